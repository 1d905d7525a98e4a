package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	SessionBackend string
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	FirebaseCreds  string
	AdminUsername  string
	AdminPassword  string
}

// Production reports whether the app runs with ENV=production.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads .env files (if present) and then the environment.
func Load(files ...string) (Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load(files...)

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		Env:           getenv("ENV", "development"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		FirebaseCreds: getenv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "120h"); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = parseDuration("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return Config{}, err
	}

	cfg.SessionBackend = strings.ToLower(os.Getenv("SESSION_BACKEND"))
	if cfg.SessionBackend == "" {
		switch {
		case cfg.RedisURL != "":
			cfg.SessionBackend = BackendRedis
		case cfg.DatabaseURL != "":
			cfg.SessionBackend = BackendPostgres
		default:
			cfg.SessionBackend = BackendMemory
		}
	}
	switch cfg.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_URL")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("SESSION_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: %s must be positive", key, d)
	}
	return d, nil
}
