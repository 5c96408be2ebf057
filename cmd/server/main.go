package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"

	"github.com/edly-io/sparkth-sub000/internal/config"
	"github.com/edly-io/sparkth-sub000/internal/database"
	"github.com/edly-io/sparkth-sub000/internal/plugins"
	"github.com/edly-io/sparkth-sub000/internal/routes"
	"github.com/edly-io/sparkth-sub000/internal/tools"
	"github.com/edly-io/sparkth-sub000/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	if err := database.SeedBuiltinPlugins(db); err != nil {
		log.Fatalf("builtin plugin seed failed: %v", err)
	}

	// Load phase: the registry is fully populated before the server accepts
	// dispatch calls.
	configs := &plugins.UserConfigStore{DB: db}
	registry := tools.NewRegistry()
	for _, tool := range tools.NewCanvasTools(configs, nil) {
		registry.Register(tool)
	}
	for _, tool := range tools.NewOpenEdXTools(configs, nil) {
		registry.Register(tool)
	}

	hub := ws.NewEventHub()
	go hub.Run()

	r := gin.Default()
	routes.Register(r, db, cfg, registry, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Println("server exited with error:", err)
		os.Exit(1)
	}
}
