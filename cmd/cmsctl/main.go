package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/internal/logger"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile string
	verbose bool
}

func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "Operational commands for simple-cms",
		Long: `cmsctl runs maintenance tasks against a simple-cms deployment.

Configuration is read from the same environment variables as the server
(DATABASE_URL, DB_SCHEMA, STORAGE_TYPE, REDIS_URL, ...), optionally loaded
from a .env file first.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level to stderr")

	rootCmd.AddCommand(NewMigrateCommand(flags))
	rootCmd.AddCommand(NewTickCommand(flags))
	rootCmd.AddCommand(NewTrashCommand(flags))

	return rootCmd
}

func (f *globalFlags) load() (*config.ServerConfig, error) {
	cfg, err := config.Load(config.WithDotEnv(f.envFile), config.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logger writes to stderr and only reports problems unless --verbose is set.
func (f *globalFlags) logger(cfg *config.ServerConfig) (*zap.Logger, error) {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, File: cfg.LogFile, Stderr: true})
}

// withRuntime builds the configured runtime, runs fn and releases it.
func (f *globalFlags) withRuntime(ctx context.Context, fn func(*config.Runtime) error) error {
	cfg, err := f.load()
	if err != nil {
		return err
	}
	log, err := f.logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rt, err := cfg.Build(ctx, log)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}
