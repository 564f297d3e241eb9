package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EmailProviderLog    = "log"
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	AutoMigrate  bool // Run pending migrations on startup

	// Security
	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int
	Workers    int // Max concurrent CPU-heavy jobs (bcrypt, image resize)

	// Email
	EmailProvider string // "log", "resend" or "smtp"
	EmailFrom     string
	ResendAPIKey  string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string

	// Avatars
	StorageDriver string // "local" or "s3"
	AvatarDir     string // Root directory for local storage, avatars land in <AvatarDir>/avatars
	AvatarSize    int    // Width and height in pixels

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Accounts"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL for verification links
		Port:    envString("PORT", "3000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/accounts.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
		AutoMigrate:  envBool("DB_AUTO_MIGRATE", true),

		// Security
		JWTSecret:  envRequired("JWT_SECRET"),
		JWTExpiry:  envDuration("JWT_EXPIRY", 23*time.Hour),
		BcryptCost: envInt("BCRYPT_COST", 10),
		Workers:    envInt("WORKERS", runtime.GOMAXPROCS(0)),

		// Email (EMAIL_PROVIDER=log only allowed outside production)
		EmailProvider: envString("EMAIL_PROVIDER", EmailProviderLog),
		EmailFrom:     envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:  envString("RESEND_API_KEY", ""),
		SMTPHost:      envString("SMTP_HOST", ""),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      envString("SMTP_USER", ""),
		SMTPPassword:  envString("SMTP_PASSWORD", ""),

		// Avatars
		StorageDriver: envString("STORAGE_DRIVER", StorageDriverLocal),
		AvatarDir:     envString("AVATAR_DIR", "public"),
		AvatarSize:    envInt("AVATAR_SIZE", 250),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (only read when STORAGE_DRIVER=s3)
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	err = cfg.Validate()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks combinations of settings that the env helpers cannot catch one key at a time.
func (c *Config) Validate() error {
	switch c.EmailProvider {
	case EmailProviderLog:
		if c.IsProduction() {
			return errors.New("production deployment requires EMAIL_PROVIDER=resend or smtp")
		}
	case EmailProviderResend:
		if c.ResendAPIKey == "" {
			return errors.New("EMAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			return errors.New("EMAIL_PROVIDER=smtp requires SMTP_HOST")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	switch c.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.S3Bucket == "" {
			return errors.New("STORAGE_DRIVER=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	if c.AvatarSize <= 0 {
		return fmt.Errorf("AVATAR_SIZE must be positive, got %d", c.AvatarSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}

	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
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
