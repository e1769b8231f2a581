package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envConfig is the environment variable surface of ServerConfig.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseType string `env:"DATABASE_TYPE"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DBSchema     string `env:"DB_SCHEMA" env-default:"cms"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" env-default:"false"`

	StorageType      string `env:"STORAGE_TYPE" env-default:"memory"`
	StorageDir       string `env:"STORAGE_DIR" env-default:"./data/media"`
	StorageURLPrefix string `env:"STORAGE_URL_PREFIX"`

	S3Region          string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PresignSeconds  int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	RedisURL string `env:"REDIS_URL"`

	SchedulerEnabled  bool          `env:"SCHEDULER_ENABLED" env-default:"true"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" env-default:"60s"`

	SanitizeHTML bool `env:"SANITIZE_HTML" env-default:"true"`

	SiteTitle string `env:"SITE_TITLE" env-default:"Simple CMS"`
	BaseURL   string `env:"BASE_URL"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// WithEnv applies environment variable overrides.
//
// Server:
//
//	PORT, ENVIRONMENT
//
// Database:
//
//	DATABASE_URL - "postgres://..." or "postgresql://..." selects postgres,
//	               empty or "memory" keeps the in-memory repository
//	DATABASE_TYPE - force "memory" or "postgres"
//	DB_SCHEMA, AUTO_MIGRATE
//
// Media storage:
//
//	STORAGE_TYPE - memory, fs or s3
//	STORAGE_DIR, STORAGE_URL_PREFIX (fs)
//	S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY,
//	S3_USE_PATH_STYLE, S3_PRESIGN_DURATION, S3_CREATE_BUCKET (s3)
//
// Site:
//
//	SITE_TITLE, BASE_URL - Atom feed title and absolute link prefix
//
// Scheduler and logging:
//
//	REDIS_URL, SCHEDULER_ENABLED, SCHEDULER_INTERVAL, SANITIZE_HTML,
//	LOG_LEVEL, LOG_FILE
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		c.Port = env.Port
		c.Environment = env.Environment

		dbType, err := databaseType(env.DatabaseType, env.DatabaseURL)
		if err != nil {
			return err
		}
		c.DatabaseType = dbType
		c.DatabaseURL = ""
		if dbType == "postgres" {
			c.DatabaseURL = env.DatabaseURL
		}
		c.DBSchema = env.DBSchema
		c.AutoMigrate = env.AutoMigrate

		c.StorageType = env.StorageType
		c.StorageDir = env.StorageDir
		c.StorageURLPrefix = env.StorageURLPrefix
		c.S3 = S3Config{
			Region:                 env.S3Region,
			Bucket:                 env.S3Bucket,
			AccessKeyID:            env.S3AccessKeyID,
			SecretAccessKey:        env.S3SecretAccessKey,
			Endpoint:               env.S3Endpoint,
			UsePathStyle:           env.S3UsePathStyle,
			PresignDuration:        env.S3PresignSeconds,
			CreateBucketIfNotExist: env.S3CreateBucket,
		}

		c.RedisURL = env.RedisURL
		c.SchedulerEnabled = env.SchedulerEnabled
		c.SchedulerInterval = env.SchedulerInterval
		c.SanitizeHTML = env.SanitizeHTML
		c.SiteTitle = env.SiteTitle
		c.BaseURL = env.BaseURL
		c.LogLevel = env.LogLevel
		c.LogFile = env.LogFile
		return nil
	}
}

// databaseType resolves the repository type from DATABASE_TYPE and the URL scheme.
func databaseType(explicit, url string) (string, error) {
	switch explicit {
	case "memory", "postgres":
		return explicit, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported DATABASE_TYPE: %s", explicit)
	}

	switch {
	case url == "" || url == "memory":
		return "memory", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported DATABASE_URL format (use 'memory' or 'postgresql://...')")
}

// WithDotEnv loads variables from a .env file into the process environment
// before WithEnv reads them. A missing file is ignored.
func WithDotEnv(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			path = ".env"
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
}
