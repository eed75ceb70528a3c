package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/wilayah_api/internal/config"
	"github.com/GTDGit/wilayah_api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withDB := func(fn func(cfg *config.Config, db *sql.DB) error) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cfg, db.DB)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(cfg *config.Config, db *sql.DB) error {
				if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
					return err
				}
				return printVersion(cmd, cfg, db)
			})
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(cfg *config.Config, db *sql.DB) error {
				if err := database.RollbackMigrations(db, cfg.MigrationsPath, steps); err != nil {
					return err
				}
				return printVersion(cmd, cfg, db)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(cfg *config.Config, db *sql.DB) error {
				return printVersion(cmd, cfg, db)
			})
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

func printVersion(cmd *cobra.Command, cfg *config.Config, db *sql.DB) error {
	version, dirty, err := database.MigrationVersion(db, cfg.MigrationsPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
