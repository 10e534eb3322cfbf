// Package main provides the entry point for the WikiClass dashboard server
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/wikilytics/wikiclass/internal/analysis"
	"github.com/wikilytics/wikiclass/internal/api"
	"github.com/wikilytics/wikiclass/internal/config"
	"github.com/wikilytics/wikiclass/internal/dataset"
	"github.com/wikilytics/wikiclass/internal/presentation"
	"github.com/wikilytics/wikiclass/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logging.SetupLogger(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	// Dataset store with explicit memoization; the first request pays
	// for the load, every later one reuses the immutable table.
	store := dataset.NewStore(cfg.Dataset.Schema, dataset.NewMemoryCache())
	provider := analysis.NewProvider(store, cfg.Dataset.Path, cfg.Dataset.TopLanguages)

	// Warm the cache so schema problems surface at startup, not on the
	// first user request.
	if _, err := provider.Aggregate(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("Failed to load dataset")
	}

	renderer := presentation.NewRenderer(nil)
	h := api.NewHandlers(provider, renderer)

	// Initialize Fiber app with configuration
	app := fiber.New(fiber.Config{
		AppName:               "WikiClass Dashboard",
		DisableStartupMessage: false,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "UTC",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	setupRoutes(app, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Server.Port).Msg("Starting WikiClass dashboard server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

// setupRoutes configures all API routes
func setupRoutes(app *fiber.App, h *api.Handlers) {
	// Health check
	app.Get("/health", h.Health)

	// Dashboard page
	app.Get("/dashboard", h.GetDashboard)

	// API v1 routes
	v1 := app.Group("/api/v1")
	v1.Get("/view", h.GetView)
	v1.Get("/chart", h.GetChart)
	v1.Get("/summary", h.GetSummary)
	v1.Get("/sample", h.GetSample)
	v1.Get("/languages", h.GetLanguages)
	v1.Get("/categories", h.GetCategories)

	// Root redirect
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusFound)
	})
}
