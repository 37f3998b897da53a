// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
	DriverMemory   = "memory"
)

// Image hosts accepted in IMAGE_HOST.
const (
	ImageHostCloudinary = "cloudinary"
	ImageHostS3         = "s3"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Storage backend: "postgres", "mongodb" or "memory"
	DBDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MongoDB connection
	MongoURI string
	MongoDB  string

	// Valkey (Redis-compatible) for sessions. The memory driver keeps
	// sessions in process instead.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Environment super-admin. Disabled when either value is empty.
	AdminUsername string
	AdminPassword string

	// Password hashing scheme for stored users: "argon2id" or "bcrypt"
	PasswordHasher string

	// TOTP issuer shown in authenticator apps
	TOTPIssuer string

	// Image host: "cloudinary" or "s3"
	ImageHost string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Comma-separated list of allowed CORS origins
	CORSAllowedOrigins []string
}

// LoadDotEnv loads .env.local and .env from the working directory when
// present. Variables already set in the environment win.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBDriver: envOrDefault("DB_DRIVER", DriverPostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "hsarchitects"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "hsarchitects"),

		MongoURI: envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  envOrDefault("MONGODB_DB", "hs-architects"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AdminUsername: envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		PasswordHasher: envOrDefault("PASSWORD_HASHER", "argon2id"),
		TOTPIssuer:     envOrDefault("TOTP_ISSUER", "HS Architects"),

		ImageHost: envOrDefault("IMAGE_HOST", ImageHostCloudinary),

		CloudinaryCloudName: envOrDefault("CLOUDINARY_CLOUD_NAME", os.Getenv("NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME")),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "hs-architects"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q, %q or %q, got %q", DriverPostgres, DriverMongo, DriverMemory, cfg.DBDriver)
	}

	switch cfg.ImageHost {
	case ImageHostCloudinary, ImageHostS3:
	default:
		return nil, fmt.Errorf("IMAGE_HOST must be %q or %q, got %q", ImageHostCloudinary, ImageHostS3, cfg.ImageHost)
	}

	switch cfg.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return nil, fmt.Errorf("PASSWORD_HASHER must be \"argon2id\" or \"bcrypt\", got %q", cfg.PasswordHasher)
	}

	if cfg.Env == "production" {
		if err := cfg.validateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) validateProduction() error {
	var errs []error
	if c.DBDriver == DriverPostgres && c.DBPassword == "changeme" {
		errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
	}
	if c.DBDriver == DriverMemory {
		errs = append(errs, errors.New("DB_DRIVER=memory is not allowed in production"))
	}
	if c.AdminPassword == "changeme" {
		errs = append(errs, errors.New("ADMIN_PASSWORD must not be the default in production"))
	}
	if c.ImageHost == ImageHostCloudinary && c.CloudinaryCloudName != "" && c.CloudinaryAPISecret == "" {
		errs = append(errs, errors.New("CLOUDINARY_API_SECRET must be set when CLOUDINARY_CLOUD_NAME is"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CloudinaryConfigured reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
