package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	redislock "github.com/tendant/simple-cms/pkg/simplecms/lock/redis"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
	"go.uber.org/zap"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:              "8080",
		Environment:       "development",
		DatabaseType:      "memory",
		DBSchema:          "cms",
		StorageType:       "memory",
		StorageDir:        "./data/media",
		SchedulerEnabled:  true,
		SchedulerInterval: simplecms.DefaultTickInterval,
		SanitizeHTML:      true,
		SiteTitle:         "Simple CMS",
		LogLevel:          "info",
	}
}

// ServerConfig represents configuration for the simple-cms server and CLI
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "postgres"
	DatabaseURL  string
	DBSchema     string // Postgres schema to use (default: cms)
	AutoMigrate  bool

	// Media storage configuration
	StorageType      string // "memory", "fs", "s3"
	StorageDir       string
	StorageURLPrefix string
	S3               S3Config

	// Optional Redis used for the scheduler lock
	RedisURL string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	SanitizeHTML bool

	// Site metadata for the Atom feed
	SiteTitle string
	BaseURL   string

	LogLevel string
	LogFile  string
}

// S3Config configures the S3 media backend
type S3Config struct {
	Region                 string
	Bucket                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	PresignDuration        int
	CreateBucketIfNotExist bool
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.StorageDir == "" {
			return errors.New("storage_dir is required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if c.SchedulerInterval <= 0 {
		return errors.New("scheduler_interval must be positive")
	}

	return nil
}

// Runtime holds everything built from a ServerConfig.
type Runtime struct {
	Service    simplecms.Service
	Repository simplecms.Repository
	Sessions   simplecms.SessionStore
	Scheduler  *simplecms.Scheduler
	Pool       *pgxpool.Pool

	closers []func()
}

// Close releases connections in reverse order of creation.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Build creates the service, session store and scheduler described by the
// configuration. The caller must Close the runtime.
func (c *ServerConfig) Build(ctx context.Context, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{}

	var audit simplecms.AuditSink
	switch c.DatabaseType {
	case "postgres":
		pool, err := OpenPostgres(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.Pool = pool

		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool, c.DBSchema); err != nil {
				rt.Close()
				return nil, err
			}
		}
		rt.Repository = repopg.NewWithPool(pool)
		rt.Sessions = repopg.NewSessionStore(pool)
		audit = simplecms.MultiAuditSink{repopg.NewAuditLog(pool), simplecms.NewLogAuditSink(logger)}
	default:
		rt.Repository = memory.New()
		rt.Sessions = memory.NewSessionStore(nil)
		audit = simplecms.MultiAuditSink{memory.NewAuditLog(), simplecms.NewLogAuditSink(logger)}
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}

	options := []simplecms.Option{
		simplecms.WithRepository(rt.Repository),
		simplecms.WithBlobStore(store),
		simplecms.WithAuditSink(audit),
		simplecms.WithLogger(logger),
	}
	if c.SanitizeHTML {
		options = append(options, simplecms.WithSanitizer(simplecms.NewHTMLSanitizer()))
	}
	svc, err := simplecms.New(options...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc

	schedOpts := []simplecms.SchedulerOption{
		simplecms.WithSchedulerSessions(rt.Sessions),
		simplecms.WithSchedulerLogger(logger),
		simplecms.WithTickInterval(c.SchedulerInterval),
	}
	if c.RedisURL != "" {
		locker, client, err := redislock.NewFromURL(ctx, c.RedisURL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		schedOpts = append(schedOpts, simplecms.WithSchedulerLocker(locker))
	}
	sched, err := simplecms.NewScheduler(rt.Repository, schedOpts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Scheduler = sched

	return rt, nil
}

// OpenPostgres connects a pool and sets search_path to schema on every connection.
func OpenPostgres(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildBlobStore creates the media BlobStore for the configured storage type
func (c *ServerConfig) buildBlobStore(ctx context.Context) (simplecms.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.StorageDir,
			URLPrefix: c.StorageURLPrefix,
		})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageType)
	}
}
