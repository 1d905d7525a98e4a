package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kgportal/internal/config"
	"kgportal/internal/logging"
	"kgportal/internal/services"
	"kgportal/internal/session"
)

// The worker removes expired sessions from the postgres session store.
func main() {
	cfg, err := config.Load()
	log := logging.New(cfg.LogLevel)
	defer logging.Sync(log)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("session sweeper started", zap.Duration("interval", cfg.SweepInterval))
	session.RunSweeper(ctx, session.NewGormStore(db), cfg.SweepInterval, log)
	log.Info("shutting down worker")
}
