package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMongo = "mongo"
	BackendSQL   = "sql"

	PhotoStoreDisk = "disk"
	PhotoStoreS3   = "s3"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreBackend selects the repositories: "mongo" or "sql".
	StoreBackend string `env:"STORE_BACKEND, default=mongo"`
	// EmptyListNotFound reports list endpoints with zero results as 404.
	EmptyListNotFound bool `env:"EMPTY_LIST_NOT_FOUND, default=true"`

	JWT        JWTConfig
	Mongo      MongoConfig
	SQL        SQLConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Photos     PhotoConfig
	Thumbnails ThumbnailConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Issuer string        `env:"JWT_ISSUER, default=cats-api"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cats"`
}

type SQLConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `env:"SQL_DRIVER, default=sqlite"`
	DSN    string `env:"SQL_DSN,    default=file:cats.db"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED, default=true"`
	Max     int           `env:"RATE_LIMIT_MAX,     default=5"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,  default=30s"`
}

type PhotoConfig struct {
	// Store is "disk" or "s3".
	Store    string `env:"PHOTO_STORE, default=disk"`
	Dir      string `env:"UPLOAD_DIR,  default=uploads"`
	Bucket   string `env:"S3_BUCKET"`
	Region   string `env:"S3_REGION,   default=eu-north-1"`
	Endpoint string `env:"S3_ENDPOINT"`
	Prefix   string `env:"S3_PREFIX"`
}

type ThumbnailConfig struct {
	Workers int `env:"THUMBNAIL_WORKERS, default=4"`
}

// IsDevelopment reports whether error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreBackend {
	case BackendMongo, BackendSQL:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMongo, BackendSQL, c.StoreBackend))
	}
	switch c.Photos.Store {
	case PhotoStoreDisk:
	case PhotoStoreS3:
		if c.Photos.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when PHOTO_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("PHOTO_STORE must be %q or %q, got %q", PhotoStoreDisk, PhotoStoreS3, c.Photos.Store))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads a .env file when present, then the environment, using
// go-envconfig. Variables already set in the environment win over .env.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes the configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
