package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"pattern-mapper/internal/common/config"
	"pattern-mapper/internal/common/middleware"
	"pattern-mapper/internal/pattern/handlers"
	"pattern-mapper/internal/pattern/loader"
	"pattern-mapper/internal/pattern/watch"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Pattern Mapper Service
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit(),
		AppName:      "Pattern Mapper",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.Logger())

	// ============================================================
	// Routes
	// ============================================================

	builder := loader.NewBuilder(log.Default())
	builder.MergeTolerance = cfg.MergeTolerance

	pattern := handlers.NewPatternHandler(builder, log.Default())
	handlers.Register(app, pattern, handlers.NewHealthHandler(pattern))

	// ============================================================
	// File Watcher
	// ============================================================

	if cfg.WatchEnabled() {
		w := watch.New(builder, log.Default(), cfg.WatchSettings, cfg.WatchShapes, cfg.WatchOutput)
		go func() {
			if err := w.Run(context.Background()); err != nil {
				log.Printf("[WATCH] stopped: %v", err)
			}
		}()
		log.Printf("Watching %s and %s, writing %s", w.SettingsPath, w.ShapesPath, w.OutputPath)
	}

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Pattern Mapper on %s (env: %s, merge tolerance: %g)", addr, cfg.Environment, cfg.MergeTolerance)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
