// Command stubserver is an in-memory implementation of the appointment
// backend's REST contract, for local development and end-to-end testing of
// the client.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/care-client/internal/config"
	"github.com/spec-kit/care-client/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	srv := &server{
		store:      newMemStore(),
		tokens:     NewTokenManager(cfg.StubServer.JWTSecret, cfg.StubServer.AccessTokenTTL()),
		bcryptCost: cfg.StubServer.BcryptCost,
		logger:     logger,
	}

	app := fiber.New()
	app.Use(requestLogger(logger))
	registerRoutes(app, srv)

	go func() {
		if err := app.Listen(cfg.StubServer.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func registerRoutes(app *fiber.App, srv *server) {
	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", srv.handleRegister)
	authGroup.Post("/login", srv.handleLogin)
	authGroup.Post("/refresh", srv.handleRefresh)

	protected := apiGroup.Group("", srv.requireAuth)
	protected.Get("/profile", srv.handleProfile)
	protected.Get("/availability", srv.handleGetAvailability)
	protected.Post("/availability/add", srv.handleAddAvailability)
	protected.Post("/appointments/book", srv.handleBook)
	protected.Get("/appointments/my", srv.handleMyAppointments)
	protected.Get("/appointments/doctor", srv.handleDoctorAppointments)
	protected.Delete("/appointments/:id", srv.handleCancel)
	protected.Get("/doctors/nearby", srv.handleNearbyDoctors)
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
