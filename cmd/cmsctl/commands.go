package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
)

var errNeedsPostgres = errors.New("migrations require DATABASE_TYPE=postgres")

// NewMigrateCommand creates the migrate command group
func NewMigrateCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.DatabaseType != "postgres" {
				return errNeedsPostgres
			}
			pool, err := config.OpenPostgres(cmd.Context(), cfg.DatabaseURL, cfg.DBSchema)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repopg.Migrate(cmd.Context(), pool, cfg.DBSchema); err != nil {
				return err
			}
			v, _, err := repopg.MigrationVersion(pool, cfg.DBSchema)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s at version %d\n", cfg.DBSchema, v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.DatabaseType != "postgres" {
				return errNeedsPostgres
			}
			pool, err := config.OpenPostgres(cmd.Context(), cfg.DatabaseURL, cfg.DBSchema)
			if err != nil {
				return err
			}
			defer pool.Close()

			v, dirty, err := repopg.MigrationVersion(pool, cfg.DBSchema)
			if err != nil {
				return err
			}
			out := fmt.Sprintf("%d", v)
			if dirty {
				out += " (dirty)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})

	return cmd
}

// NewTickCommand runs a single scheduler pass, for cron-driven deployments
// that do not run the in-process scheduler.
func NewTickCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one scheduler pass (publish due items, purge trash, expire sessions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withRuntime(cmd.Context(), func(rt *config.Runtime) error {
				report := rt.Scheduler.Tick(cmd.Context())
				if asJSON {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					printTickReport(cmd, report)
				}
				return report.Err()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printTickReport(cmd *cobra.Command, report *simplecms.TickReport) {
	out := cmd.OutOrStdout()
	if report.Skipped {
		fmt.Fprintln(out, "tick skipped: another replica holds the scheduler lock")
		return
	}
	for _, kind := range simplecms.Kinds {
		fmt.Fprintf(out, "%s: published %d, purged %d\n", kind, report.Published[kind], report.Purged[kind])
	}
	fmt.Fprintf(out, "sessions expired: %d\n", report.SessionsExpired)
}

// NewTrashCommand creates the trash command group
func NewTrashCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and empty the trash",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trashed pages and articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withRuntime(cmd.Context(), func(rt *config.Runtime) error {
				listing, err := rt.Service.ListTrash(cmd.Context())
				if err != nil {
					return err
				}

				now := time.Now().UTC()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KIND\tID\tSLUG\tTRASHED AT\tPURGEABLE")
				for _, items := range [][]*simplecms.Item{listing.Pages, listing.Articles} {
					for _, item := range items {
						trashedAt := "-"
						if item.TrashedAt != nil {
							trashedAt = item.TrashedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", item.Kind, item.ID, item.Slug, trashedAt, simplecms.PurgeEligible(item, now))
					}
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "empty",
		Short: "Permanently delete items trashed more than 30 days ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withRuntime(cmd.Context(), func(rt *config.Runtime) error {
				purged, err := rt.Service.EmptyTrash(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d pages, %d articles\n", purged.Pages, purged.Articles)
				return nil
			})
		},
	})

	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
