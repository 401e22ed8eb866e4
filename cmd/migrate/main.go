package main

import (
	"context"
	"flag"
	"log"
	"time"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/logger"

	"go.uber.org/zap"
)

func main() {
	directionFlag := flag.String("direction", "up", "migration direction: up or down (down reverts every migration)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration timeout")
	flag.Parse()

	direction, err := database.ParseDirection(*directionFlag)
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.Open(cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err), zap.String("driver", cfg.DB.Driver))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	l.Info("Running migrations", zap.String("driver", db.DriverName()), zap.String("direction", string(direction)))
	if err := database.Migrate(ctx, db, direction); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
	l.Info("Migrations completed")
}
