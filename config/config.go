package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sitedata/pkg/logger"
)

// Backend identifiers accepted in SITE_BACKEND. Exactly one backend is
// active per deployment; it is chosen here once at startup.
const (
	BackendMemory   = "memory"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendGit      = "git"
	BackendHTTP     = "http"
)

// DefaultNames is the closed set of documents the site serves when
// SITE_DOCUMENTS is not set.
var DefaultNames = []string{"events", "reflections", "gallery", "gallery-images", "gallery-albums"}

type Config struct {
	Addr    string
	Backend string

	// Auth: writes require a JWT whose email claim matches AdminEmail.
	JWTSecret  string
	AdminEmail string

	// Documents served by this deployment.
	Names []string

	// S3 backend
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// Postgres backend
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	// SQLite backend
	SQLitePath string

	// Git backend
	GitRepoPath string
	GitName     string
	GitEmail    string

	// HTTP backend (read from a public URL, write through the signed proxy)
	ReadBaseURL string
	ProxyURL    string
	IDToken     string

	// Cron expression for the periodic document backup. Empty disables it.
	BackupSchedule string

	// Staleness bound for subscribers when no change signal arrives.
	FallbackInterval time.Duration
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	cfg := &Config{
		Addr:             env("SITE_ADDR", ":8080"),
		Backend:          env("SITE_BACKEND", BackendMemory),
		JWTSecret:        env("SITE_JWT_SECRET", ""),
		AdminEmail:       env("SITE_ADMIN_EMAIL", ""),
		S3Endpoint:       env("S3_ENDPOINT", ""),
		S3Region:         env("S3_REGION", ""),
		S3AccessKey:      env("S3_ACCESS_KEY", ""),
		S3SecretKey:      env("S3_SECRET_KEY", ""),
		S3Bucket:         env("S3_BUCKET", ""),
		DBUser:           env("user", ""),
		DBPass:           env("password", ""),
		DBHost:           env("host", ""),
		DBPort:           env("port", ""),
		DBName:           env("dbname", ""),
		SQLitePath:       env("SQLITE_PATH", "sitedata.db"),
		GitRepoPath:      env("GIT_REPO_PATH", ""),
		GitName:          env("GIT_NAME", "sitedata"),
		GitEmail:         env("GIT_EMAIL", "sitedata@localhost"),
		ReadBaseURL:      env("READ_BASE_URL", ""),
		ProxyURL:         env("PROXY_URL", ""),
		IDToken:          env("ID_TOKEN", ""),
		BackupSchedule:   env("BACKUP_SCHEDULE", ""),
		FallbackInterval: 5 * time.Minute,
	}

	if names := env("SITE_DOCUMENTS", ""); names != "" {
		for _, n := range strings.Split(names, ",") {
			if n = strings.TrimSpace(n); n != "" {
				cfg.Names = append(cfg.Names, n)
			}
		}
	} else {
		cfg.Names = append(cfg.Names, DefaultNames...)
	}

	if iv := env("FALLBACK_INTERVAL", ""); iv != "" {
		d, err := time.ParseDuration(iv)
		if err != nil {
			return nil, fmt.Errorf("invalid FALLBACK_INTERVAL %q: %w", iv, err)
		}
		cfg.FallbackInterval = d
	}

	switch cfg.Backend {
	case BackendMemory, BackendS3, BackendPostgres, BackendSQLite, BackendGit, BackendHTTP:
	default:
		return nil, fmt.Errorf("unknown SITE_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string from the individual env parts.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=require", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// ValidName reports whether name belongs to this deployment's document set.
func (c *Config) ValidName(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
