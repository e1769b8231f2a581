package config

import "time"

// WithPort sets the HTTP port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the runtime environment
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabase sets the repository type and connection URL
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate runs pending migrations when the runtime is built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithFilesystemStorage stores media under dir
func WithFilesystemStorage(dir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		c.StorageType = "fs"
		c.StorageDir = dir
		c.StorageURLPrefix = urlPrefix
		return nil
	}
}

// WithS3Storage stores media in an S3-compatible bucket
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		c.StorageType = "s3"
		c.S3 = s3
		return nil
	}
}

// WithMemoryStorage keeps media in memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageType = "memory"
		return nil
	}
}

// WithRedis enables the distributed scheduler lock
func WithRedis(url string) Option {
	return func(c *ServerConfig) error {
		c.RedisURL = url
		return nil
	}
}

// WithScheduler toggles the background scheduler and sets its interval
func WithScheduler(enabled bool, interval time.Duration) Option {
	return func(c *ServerConfig) error {
		c.SchedulerEnabled = enabled
		if interval > 0 {
			c.SchedulerInterval = interval
		}
		return nil
	}
}

// WithLogging sets the log level and optional log file
func WithLogging(level, file string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		c.LogFile = file
		return nil
	}
}
