package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kgportal/internal/accounts"
	"kgportal/internal/config"
	"kgportal/internal/handlers"
	"kgportal/internal/logging"
	"kgportal/internal/server"
	"kgportal/internal/services"
	"kgportal/internal/session"
)

func main() {
	cfg, err := config.Load()
	log := logging.New(cfg.LogLevel)
	defer logging.Sync(log)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database is optional; without it accounts live in memory
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = services.InitDB(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := services.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Warn("DATABASE_URL not set, accounts are kept in memory")
	}

	var users accounts.UserRepository = accounts.NewMemoryUserRepository()
	if db != nil {
		users = accounts.NewGormUserRepository(db)
	}
	accountService := accounts.NewService(users)
	if err := accountService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("failed to seed admin account", zap.Error(err))
	}

	var store session.Store
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := services.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = session.NewRedisStore(client)
	case config.BackendPostgres:
		store = session.NewGormStore(db)
	default:
		mem := session.NewMemoryStore()
		go session.RunSweeper(ctx, mem, cfg.SweepInterval, log.Named("sweeper"))
		store = mem
	}
	log.Info("session store ready", zap.String("backend", cfg.SessionBackend))

	var verifier handlers.TokenVerifier
	authClient, err := services.InitFirebase(ctx, cfg.FirebaseCreds)
	if err != nil {
		log.Warn("firebase initialization failed, token sign-in disabled", zap.Error(err))
	} else {
		verifier = authClient
	}

	e, nav, err := server.New(server.Options{
		Store:         store,
		Accounts:      accountService,
		Verifier:      verifier,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.Production(),
		Logger:        log,
	})
	if err != nil {
		log.Fatal("invalid route table", zap.Error(err))
	}
	for _, r := range nav.Routes() {
		log.Debug("route registered", zap.String("path", r.Path), zap.String("name", r.Name), zap.String("redirect", r.Redirect))
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
