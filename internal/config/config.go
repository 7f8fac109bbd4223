package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Login identifier policies
const (
	LoginRequireAll = "all"
	LoginRequireAny = "any"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	CORSOrigin  string `env:"CORS_ORIGIN"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"videotube"`

	// JWT
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	// Media host (S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Uploads
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./public/temp"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxBodyBytes   int64  `env:"MAX_BODY_BYTES" envDefault:"16384"`

	// Auth policy
	LoginIdentifierPolicy string  `env:"LOGIN_IDENTIFIER_POLICY" envDefault:"all"`
	RateLimitRPS          float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst        int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("config: token expiries must be positive")
	}

	switch c.LoginIdentifierPolicy {
	case LoginRequireAll, LoginRequireAny:
	default:
		return fmt.Errorf("config: LOGIN_IDENTIFIER_POLICY must be %q or %q, got %q",
			LoginRequireAll, LoginRequireAny, c.LoginIdentifierPolicy)
	}

	if c.StoreDriver() == "" {
		return fmt.Errorf("config: unsupported DATABASE_URL scheme")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StoreDriver picks the credential store backend from the DATABASE_URL scheme.
func (c *Config) StoreDriver() string {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.DatabaseURL, "mongodb://"), strings.HasPrefix(c.DatabaseURL, "mongodb+srv://"):
		return "mongo"
	}
	return ""
}

// MediaConfigured reports whether a remote asset host is set up.
func (c *Config) MediaConfigured() bool {
	return c.S3Bucket != ""
}
