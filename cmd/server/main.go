package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/ltaportal/procurement/internal/gateway"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/config"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/logger"
	"github.com/ltaportal/procurement/migrations"
	"github.com/ltaportal/procurement/pkg/migration"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	zapLogger, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("Connecting to DB...")
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("Database Connected Successfully!")

	if cfg.Portal.MigrationsAuto {
		if err := migration.AutoMigrate(cfg.Database.URL(), migrations.FS, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	app, err := newApp(context.Background(), cfg, db, cache.NewRedisCache(rdb), logger)
	if err != nil {
		return err
	}

	server := gateway.NewServer(cfg.Server.Port, app.handler, logger)
	server.OnShutdown(app.close)
	return server.Start()
}
