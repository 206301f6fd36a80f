package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Auth
	APIToken      string // empty disables API auth (development)
	AdminPassword string
	SessionSecret string
	SessionExpiry time.Duration

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services
	PresignExpiry time.Duration

	// Upload limits
	FileMaxBytes          int64
	AttachmentMaxPerEvent int
	AllowedMimeTypes      []string

	// Observability (optional)
	SentryDSN string
}

// defaultMimeTypes is the allow-list applied when ALLOWED_MIME_TYPES is unset.
var defaultMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
	"text/plain",
	"text/markdown",
	"text/csv",
	"video/mp4",
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "LifeLog"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/lifelog.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Auth
		APIToken:      envString("API_TOKEN", ""),
		AdminPassword: envString("ADMIN_PASSWORD", ""),
		SessionSecret: envString("SESSION_SECRET", ""),
		SessionExpiry: envDuration("SESSION_EXPIRY", 24*time.Hour),

		// Storage
		S3Region:      envRequired("S3_REGION"),
		S3Bucket:      envRequired("S3_BUCKET"),
		S3AccessKey:   envRequired("S3_ACCESS_KEY"),
		S3SecretKey:   envRequired("S3_SECRET_KEY"),
		S3Endpoint:    envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		PresignExpiry: envDuration("PRESIGN_EXPIRY", 15*time.Minute),

		// Upload limits
		FileMaxBytes:          envInt64("FILE_MAX_BYTES", 10<<20), // 10 MiB
		AttachmentMaxPerEvent: envInt("ATTACHMENT_MAX_PER_EVENT", 10),
		AllowedMimeTypes:      envStrings("ALLOWED_MIME_TYPES", defaultMimeTypes),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures auth is configured for production deployments.
// Development allows an empty API token for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.APIToken == "" {
		slog.Error("production deployment requires API_TOKEN",
			"hint", "set APP_ENV=development for local testing without auth")
		os.Exit(1)
	}
	if cfg.AdminPassword == "" {
		slog.Error("production deployment requires ADMIN_PASSWORD")
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		slog.Error("production deployment requires SESSION_SECRET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envStrings(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
