package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/bookingengine/api"
	"github.com/Domenick1991/bookingengine/config"
	bookingsapi "github.com/Domenick1991/bookingengine/internal/api/bookings_service_api"
	"github.com/Domenick1991/bookingengine/internal/auth"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
	"github.com/Domenick1991/bookingengine/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Deps are the wired services the servers expose.
type Deps struct {
	Bookings booking.BookingUseCase
	Flights  flights.FlightUseCase
	Verifier *auth.Verifier
	// Limiter throttles booking writes; nil disables rate limiting.
	Limiter api.Limiter
	// Checks are run by /healthz; any error turns it into 503.
	Checks map[string]func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts gRPC and HTTP servers and blocks until context is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	s := newServers(cfg, deps)
	log := logger.L()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() {
		log.Info("grpc server listening", zap.String("address", cfg.GRPC.Address))
		errCh <- s.grpcServer.Serve(lis)
	}()

	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, deps Deps) *Servers {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(auth.UnaryServerInterceptor(deps.Verifier)))
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(deps.Bookings))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg.HTTP, deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the HTTP surface: health, swagger and the authenticated /api/v1 group.
func NewRouter(cfg config.HTTPConfig, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		failed := gin.H{}
		for name, check := range deps.Checks {
			if err := check(c.Request.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookings.swagger.json"))))
	}

	v1 := router.Group("/api/v1", auth.Gin(deps.Verifier))

	var writes []gin.HandlerFunc
	if deps.Limiter != nil {
		writes = append(writes, api.RateLimit(deps.Limiter))
	}
	api.NewBookingHandler(deps.Bookings, writes...).Register(v1.Group("/bookings"))
	api.NewAdminHandler(deps.Bookings).Register(v1)
	api.NewFlightHandler(deps.Flights).Register(v1.Group("/flights"))

	return router
}
