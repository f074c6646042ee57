package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BaSui01/synthdoc/internal/migration"
)

// =============================================================================
// Database Migration Commands
// =============================================================================

type migrateOptions struct {
	dbType string
	dbURL  string
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands for the run store",
		Long: "Applies the embedded SQL migrations for the run store. Use this instead of\n" +
			"database.auto_migrate when the schema is managed outside the application.",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.dbType, "db-type", "", "Database type: postgres, mysql, sqlite (default: from config)")
	pf.StringVar(&opts.dbURL, "db-url", "", "Database connection URL (default: from config)")

	// withCLI 打开迁移器并在命令结束后关闭
	withCLI := func(run func(cmd *cobra.Command, cli *migration.CLI, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := createMigrator(root, opts)
			if err != nil {
				return err
			}
			defer m.Close()

			cli := migration.NewCLI(m)
			cli.SetOutput(cmd.OutOrStdout())
			return run(cmd, cli, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, _ []string) error {
				return cli.RunUp(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Rollback the last migration",
			Args:  cobra.NoArgs,
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, _ []string) error {
				return cli.RunDown(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "steps <n>",
			Short: "Apply n migrations (negative n rolls back)",
			Args:  cobra.ExactArgs(1),
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q: %w", args[0], err)
				}
				return cli.RunSteps(cmd.Context(), n)
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Force set migration version (use with caution)",
			Args:  cobra.ExactArgs(1),
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return cli.RunForce(cmd.Context(), v)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show current migration version",
			Args:  cobra.NoArgs,
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, _ []string) error {
				return cli.RunVersion(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: withCLI(func(cmd *cobra.Command, cli *migration.CLI, _ []string) error {
				return cli.RunStatus(cmd.Context())
			}),
		},
	)
	return cmd
}

// createMigrator 优先使用 --db-type/--db-url，否则读取配置中的 database 段
func createMigrator(root *rootOptions, opts *migrateOptions) (*migration.DefaultMigrator, error) {
	if opts.dbType != "" && opts.dbURL != "" {
		return migration.NewMigratorFromURL(opts.dbType, opts.dbURL)
	}

	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbType != "" {
		cfg.Database.Driver = opts.dbType
	}
	return migration.NewMigratorFromDatabaseConfig(cfg.Database)
}
