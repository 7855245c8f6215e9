package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weekend-getaway-finder/internal/api/http"
	"github.com/i474232898/weekend-getaway-finder/internal/config"
	"github.com/i474232898/weekend-getaway-finder/internal/scheduler"
	"github.com/i474232898/weekend-getaway-finder/internal/store"
	"github.com/i474232898/weekend-getaway-finder/internal/trip"
	"github.com/i474232898/weekend-getaway-finder/internal/trip/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Append-only search history with configured retention.
	history := store.NewMemoryStore(cfg.HistoryMaxEntries, cfg.HistoryMaxAge)

	// Providers with resilience (backoff + circuit breaker).
	flights := providers.NewSerpFlightsProvider(httpClient, cfg.SerpAPIKey)
	weather := providers.NewOpenMeteoProvider(httpClient, cfg.GoogleGeocoderKey)
	prices := providers.NewAmadeusProvider(httpClient, cfg.AmadeusClientID, cfg.AmadeusClientSecret)

	// Core engine orchestrating the per-weekend fan-out.
	engine := trip.NewEngine(flights, weather, prices, history, trip.Options{
		Concurrency:  cfg.SearchConcurrency,
		CallTimeout:  cfg.CallTimeout,
		WeatherYears: cfg.WeatherYears,
	})

	// Scheduler that keeps tracked routes fresh.
	sched := scheduler.New(cfg.TrackedRoutes, cfg.SchedulerInterval, cfg.SchedulerWindowDays, engine)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weekend-getaway-finder",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
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
			"service": "weekend-getaway-finder",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, engine, history)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
