package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const appName = "weather-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logging.New(cfg, appName)
	slog.SetDefault(lg)

	if err := run(cfg, lg); err != nil {
		lg.Error("weather dashboard stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, lg *slog.Logger) error {
	lg.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"provider", cfg.Provider,
		"apiURL", cfg.WeatherAPIURL,
		"units", cfg.Units,
		"locations", len(cfg.Locations),
		"rotationInterval", cfg.RotationInterval,
		"port", cfg.Port,
	)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client, err := providers.New(cfg.Provider, httpClient, cfg.ProviderConfig())
	if err != nil {
		return err
	}

	// Presentation state with bounded per-city history.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(memStore, client, lg)

	var geocoder weather.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Rotation through the configured cities.
	sched, err := scheduler.New(cfg.Locations, cfg.RotationInterval, cfg.CycleTimeout, service, lg)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	app := newApp(service, sched, geocoder)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	lg.Info("http server listening", "addr", ":"+cfg.Port)

	// Wait for termination signal or a listener failure.
	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("http server exited")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", "error", err)
	}
	return nil
}

func newApp(service *weather.Service, rotation httpapi.Rotation, geocoder weather.Geocoder) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service, rotation, geocoder)
	return app
}
