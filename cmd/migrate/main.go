// Command migrate applies and rolls back the database schema.
//
// Usage:
//
//	migrate migrate
//	migrate rollback --steps 1
//	migrate status
package main

import (
	"fmt"
	"os"

	"fantasy-doubles-api/config"
	"fantasy-doubles-api/logger"
	"fantasy-doubles-api/migrations"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Database migrations",
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrations.Migrator) error {
				applied, err := m.Migrate()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", applied)
				return nil
			})
		},
	})

	var steps int
	rollback := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the latest migration batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrations.Migrator) error {
				return m.Rollback(steps)
			})
		},
	}
	rollback.Flags().IntVar(&steps, "steps", 1, "Number of batches to roll back")
	root.AddCommand(rollback)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrations.Migrator) error {
				applied, err := m.Status()
				if err != nil {
					return err
				}
				pending, err := m.Pending()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintln(out, "No migrations have been run yet.")
				} else {
					fmt.Fprintln(out, "Batch | Name")
					fmt.Fprintln(out, "------|-----")
					for _, migration := range applied {
						fmt.Fprintf(out, "%5d | %s\n", migration.Batch, migration.Name)
					}
				}
				for _, name := range pending {
					fmt.Fprintf(out, "pending | %s\n", name)
				}
				return nil
			})
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func withMigrator(fn func(*migrations.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	db, err := config.ConnectDatabase(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	migrator, err := migrations.NewCoreMigrator(db, log)
	if err != nil {
		return err
	}
	return fn(migrator)
}
