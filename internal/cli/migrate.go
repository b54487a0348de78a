package cli

import (
	"fmt"

	"github.com/monocle-dev/projectboard/db"
	"github.com/monocle-dev/projectboard/internal/config"
	"github.com/monocle-dev/projectboard/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMigrateCommand creates the migrate command and its up/down/version children.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(newMigrateUpCommand(rootOpts))
	cmd.AddCommand(newMigrateDownCommand(rootOpts))
	cmd.AddCommand(newMigrateVersionCommand(rootOpts))

	return cmd
}

func newMigrateUpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "up",
		Short:        "Apply all pending migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *db.Migrator) error {
				return m.Up()
			})
		},
	}
}

func newMigrateDownCommand(rootOpts *RootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:          "down",
		Short:        "Roll back migrations",
		Long:         "Roll back the given number of migrations, or all of them when --steps is 0.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *db.Migrator) error {
				return m.Down(steps)
			})
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 for all)")

	return cmd
}

func newMigrateVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "version",
		Short:        "Print the current schema version",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *db.Migrator) error {
				version, dirty, ok, err := m.Version()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !ok {
					_, err = fmt.Fprintln(out, "no migrations applied")
					return err
				}
				if dirty {
					_, err = fmt.Fprintf(out, "%d (dirty)\n", version)
					return err
				}
				_, err = fmt.Fprintln(out, version)
				return err
			})
		},
	}
}

func withMigrator(rootOpts *RootOptions, fn func(*db.Migrator) error) error {
	cfg, err := config.Load(rootOpts.EnvFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m, err := db.NewMigrator(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(m); err != nil {
		logger.Error("Migration command failed", zap.Error(err))
		return err
	}
	return nil
}
