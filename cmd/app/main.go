package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingengine/api"
	"github.com/Domenick1991/bookingengine/config"
	"github.com/Domenick1991/bookingengine/internal/auth"
	"github.com/Domenick1991/bookingengine/internal/bootstrap"
	"github.com/Domenick1991/bookingengine/internal/cache"
	"github.com/Domenick1991/bookingengine/internal/kafka"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
	"github.com/Domenick1991/bookingengine/internal/service/flights"
	"github.com/Domenick1991/bookingengine/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.Telemetry.ServiceName,
		Development: cfg.Log.Development,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.Telemetry.ServiceName,
		Environment:   cfg.Telemetry.Environment,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
		SampleRatio:   cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		zl.Fatal("init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			zl.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewBookingMetrics(telemetry.Meter())
	if err != nil {
		zl.Fatal("create metrics", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			zl.Fatal("migrate schema", zap.Error(err))
		}
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingService := booking.NewBookingService(
		repository.NewStore(pool),
		repository.NewBookingRepository(pool),
		flightRepo,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(metrics),
		booking.WithMaxPassengers(cfg.Booking.MaxPassengers),
		booking.WithTxRetries(cfg.Booking.Retries()),
	)

	var limiter api.Limiter
	if cfg.RateLimit.Enabled {
		limiter = cache.NewRateLimiter(redisClient, cfg.RateLimit)
	}

	deps := bootstrap.Deps{
		Bookings: bookingService,
		Flights:  flights.NewFlightService(flightRepo),
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret),
		Limiter:  limiter,
		Checks: map[string]func(context.Context) error{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"kafka":    producer.CheckConnection,
		},
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
