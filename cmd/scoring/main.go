// Command scoring runs scoring maintenance against the configured database.
//
// Usage:
//
//	scoring anomalies --competition 1 --matchweek 2
//	scoring sweep
//	scoring fix recalculate_match_points --competition 1
//	scoring recalculate 42
//	scoring token --user-id 1 --role admin --ttl 1h
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"fantasy-doubles-api/config"
	"fantasy-doubles-api/logger"
	"fantasy-doubles-api/packages/auth/models"
	"fantasy-doubles-api/packages/auth/utils"
	"fantasy-doubles-api/packages/core"
	coreModels "fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "scoring",
		Short:        "Scoring engine maintenance CLI",
		SilenceUsage: true,
	}

	root.AddCommand(anomaliesCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(fixCmd())
	root.AddCommand(recalculateCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// scopeFlags binds --competition and --matchweek. Zero means unset.
type scopeFlags struct {
	competitionID uint
	matchweek     int
}

func (f *scopeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().UintVar(&f.competitionID, "competition", 0, "Competition ID")
	cmd.Flags().IntVar(&f.matchweek, "matchweek", 0, "Matchweek")
}

func (f *scopeFlags) filter() coreModels.AnomalyFilter {
	var filter coreModels.AnomalyFilter
	if f.competitionID > 0 {
		id := f.competitionID
		filter.CompetitionID = &id
	}
	if f.matchweek > 0 {
		week := f.matchweek
		filter.Matchweek = &week
	}
	return filter
}

func anomaliesCmd() *cobra.Command {
	var scope scopeFlags
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Report scoring inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, module *core.Module, log zerolog.Logger) error {
				reports, err := module.MonitoringService.DetectAnomalies(ctx, scope.filter())
				if err != nil {
					return err
				}
				return printJSON(cmd, reports)
			})
		},
	}
	scope.bind(cmd)
	return cmd
}

// sweepCmd runs the scheduled anomaly sweep once, for deployments that
// schedule it outside the API process.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the anomaly sweep once and log its findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, module *core.Module, log zerolog.Logger) error {
				reports := module.Scheduler.RunNow()
				if reports == nil {
					return fmt.Errorf("anomaly sweep failed")
				}
				return printJSON(cmd, reports)
			})
		},
	}
}

func fixCmd() *cobra.Command {
	var scope scopeFlags
	cmd := &cobra.Command{
		Use:       "fix <recalculate_match_points|recalculate_fantasy_points|both>",
		Short:     "Repair scoring inconsistencies",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{coreModels.FixRecalculateMatchPoints, coreModels.FixRecalculateFantasyPoints, coreModels.FixBoth},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, module *core.Module, log zerolog.Logger) error {
				start := time.Now()
				result, err := module.MonitoringService.FixErrors(ctx, args[0], scope.filter())
				if err != nil {
					return err
				}
				log.Info().Dur("duration", time.Since(start).Round(time.Millisecond)).Msg(result.Summary())
				for _, e := range result.Errors {
					log.Error().Str("error", e).Msg("repair error")
				}
				return printJSON(cmd, result)
			})
		},
	}
	scope.bind(cmd)
	return cmd
}

func recalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate <match-id>",
		Short: "Clear and recompute the points of one match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid match id %q", args[0])
			}
			return run(func(ctx context.Context, module *core.Module, log zerolog.Logger) error {
				match, err := module.MatchService.RecalculateMatch(ctx, uint(matchID))
				if err != nil {
					return err
				}
				records, err := module.LedgerService.ListForMatch(ctx, match.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"match": match, "player_points": records})
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID uint
		email  string
		roles  []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, err := utils.GenerateToken([]byte(cfg.JWTSecret), userID, email, models.Roles(roles), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 1, "User ID")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringSliceVar(&roles, "role", []string{models.RoleAdmin}, "Granted roles")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func run(fn func(ctx context.Context, module *core.Module, log zerolog.Logger) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	db, err := config.ConnectDatabase(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	module := core.NewModule(db, log, core.Options{RepairWorkers: cfg.RepairWorkers})
	return fn(ctx, module, log)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
