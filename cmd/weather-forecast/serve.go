package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-forecast-aggregation/internal/api/http"
	"github.com/i474232898/weather-forecast-aggregation/internal/config"
	"github.com/i474232898/weather-forecast-aggregation/internal/live"
	"github.com/i474232898/weather-forecast-aggregation/internal/scheduler"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func serveCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh scheduler and the live feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
}

func serve(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live websocket feed; nil when LIVE_PORT is unset.
	hub := live.NewHub(cfg.LivePort)
	var extra []weather.Option
	if hub != nil {
		extra = append(extra, weather.WithPublisher(hub))
	}

	a, err := newApp(ctx, cfg, extra...)
	if err != nil {
		return err
	}
	defer a.Close()

	hub.Start()

	// Scheduler that periodically refreshes conditions and forecasts.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, a.service, a.favorites)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// Basic app configuration
	server := fiber.New(fiber.Config{
		AppName:               "weather-forecast-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
	server.Use(logger.New())
	server.Use(recover.New())

	httpapi.RegisterRoutes(server, a.service, &httpapi.Preferences{
		History:   a.history,
		Favorites: a.favorites,
		Settings:  a.settings,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	if err := hub.Stop(shutdownCtx); err != nil {
		log.Printf("error stopping live feed: %v", err)
	}
	return nil
}
