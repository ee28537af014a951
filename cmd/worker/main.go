package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingengine/config"
	"github.com/Domenick1991/bookingengine/internal/email"
	"github.com/Domenick1991/bookingengine/internal/kafka"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/repository"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
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
		ServiceName: cfg.Telemetry.ServiceName + "-worker",
		Development: cfg.Log.Development,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingService := booking.NewBookingService(
		repository.NewStore(pool),
		repository.NewBookingRepository(pool),
		repository.NewFlightRepository(pool),
		producer,
		cfg.Kafka.BookingTopic,
	)

	if cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		emailSender := email.NewSender()
		go func() {
			if err := consumer.Consume(ctx, kafka.DecodeBookingEvent(emailSender.Send)); err != nil {
				zl.Warn("consumer stopped", zap.Error(err))
			}
		}()
	}

	grace := time.Duration(cfg.Worker.CompletionGraceMinutes) * time.Minute
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			n, err := bookingService.CompleteDepartedTickets(ctx, grace)
			if err != nil {
				zl.Error("complete departed tickets", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Info("tickets completed", zap.Int64("count", n))
			}
		case <-ctx.Done():
			zl.Info("shutting down worker")
			return
		}
	}
}
