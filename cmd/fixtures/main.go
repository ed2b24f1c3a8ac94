// Command fixtures seeds or clears demo data.
//
// Usage:
//
//	fixtures generate --seed 42
//	fixtures clear
//	fixtures regenerate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fantasy-doubles-api/config"
	"fantasy-doubles-api/fixtures"
	"fantasy-doubles-api/logger"
	"fantasy-doubles-api/packages/core"

	"github.com/spf13/cobra"
)

func main() {
	var seed int64

	root := &cobra.Command{
		Use:          "fixtures",
		Short:        "Demo data for local development",
		SilenceUsage: true,
	}
	root.PersistentFlags().Int64Var(&seed, "seed", 42, "Random seed")

	generate := func(ctx context.Context, cmd *cobra.Command, f *fixtures.Fixtures) error {
		summary, err := f.GenerateTestData(ctx)
		if err != nil {
			return fmt.Errorf("generate fixtures: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fixtures generated: competition %d, %d players, %d matches, %d results, %d rosters\n",
			summary.CompetitionID, summary.Players, summary.Matches, summary.ResultsScored, summary.Rosters)
		for _, failure := range summary.ResultFailures {
			fmt.Fprintf(cmd.ErrOrStderr(), "result failed: %s\n", failure)
		}
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFixtures(seed, func(ctx context.Context, f *fixtures.Fixtures) error {
				return generate(ctx, cmd, f)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear all fixture data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFixtures(seed, func(ctx context.Context, f *fixtures.Fixtures) error {
				if err := f.ClearAllData(ctx); err != nil {
					return fmt.Errorf("clear fixtures: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All fixture data cleared")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "regenerate",
		Short: "Clear and regenerate demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFixtures(seed, func(ctx context.Context, f *fixtures.Fixtures) error {
				if err := f.ClearAllData(ctx); err != nil {
					return fmt.Errorf("clear fixtures: %w", err)
				}
				return generate(ctx, cmd, f)
			})
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func withFixtures(seed int64, fn func(context.Context, *fixtures.Fixtures) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

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

	module := core.NewModule(db, log, core.Options{RepairWorkers: cfg.RepairWorkers})
	return fn(ctx, fixtures.NewFixtures(db, module.RulesService, module.MatchService, seed, log))
}
