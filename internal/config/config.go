package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreAuto     = "auto"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config holds all application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Lead store
	StoreDriver      string
	DatabaseURL      string
	MongoURI         string
	MongoDatabase    string
	StoreTimeout     time.Duration
	AutoMigrateMongo bool

	// Admin access
	AdminJWTSecret    string
	AdminUsername     string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	CORSAllowedOrigins []string

	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	RateLimitPerMinute int

	// New lead notifications
	SalesNotifyEmail  []string
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// LoadDotEnv loads variables from .env style files when they exist. Values
// already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5050"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:      strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreAuto))),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MongoURI:         getEnv("MONGODB_URI", ""),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "leadcapture"),
		StoreTimeout:     getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
		AutoMigrateMongo: getEnvAsBool("MONGODB_ENSURE_INDEXES", true),

		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		AdminUsername:     getEnv("ADMIN_USERNAME", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminTokenTTL:     getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),

		SalesNotifyEmail:  getEnvAsList("SALES_NOTIFY_EMAIL"),
		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Lead Capture"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "production" || env == "prod"
}

// ResolveStoreDriver turns "auto" into a concrete driver: Postgres when
// DATABASE_URL is set, then MongoDB, then memory.
func (c *Config) ResolveStoreDriver() string {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreMongo:
		return c.StoreDriver
	}
	switch {
	case c.DatabaseURL != "":
		return StorePostgres
	case c.MongoURI != "":
		return StoreMongo
	default:
		return StoreMemory
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreAuto, StoreMemory, StorePostgres, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver == StorePostgres && c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: STORE_DRIVER=postgres requires DATABASE_URL"))
	}
	if c.StoreDriver == StoreMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("config: STORE_DRIVER=mongo requires MONGODB_URI"))
	}
	if c.IsProduction() && c.ResolveStoreDriver() == StoreMemory {
		errs = append(errs, errors.New("config: production requires DATABASE_URL or MONGODB_URI"))
	}
	if c.IsProduction() && c.AdminJWTSecret == "" {
		errs = append(errs, errors.New("config: production requires ADMIN_JWT_SECRET"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("config: RATE_LIMIT_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
