// Package main applies the embedded SQL migrations.
//
// Usage:
//
//	migrate [up|down|status]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stockwise/db"
	"stockwise/internal/infrastructure/storage/postgres"
	"stockwise/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{Level: getEnv("LOG_LEVEL", "info"), Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(logger.WithLogger(context.Background(), log), 5*time.Minute)
	defer cancel()

	cfg := postgres.DefaultPoolConfig(dsn)
	cfg.MinConns = 0
	cfg.MaxConns = 2
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m := postgres.NewMigrator(pool, db.Migrations, db.MigrationsDir)

	switch command {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "status":
		err = m.Status(ctx)
	default:
		fmt.Printf("unknown command %q, expected up, down or status\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}
	log.Infow("migration finished", "command", command)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
