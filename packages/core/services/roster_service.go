package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RosterService keeps fantasy roster points in line with the ledger.
// It is the only writer of weekly and total roster points.
type RosterService struct {
	db     *gorm.DB
	ledger *LedgerService
	log    zerolog.Logger
}

func NewRosterService(db *gorm.DB, ledger *LedgerService, log zerolog.Logger) *RosterService {
	return &RosterService{
		db:     db,
		ledger: ledger,
		log:    log.With().Str("service", "roster").Logger(),
	}
}

// RecomputeWeek rebuilds the weekly row of every roster of the competition for one
// matchweek and re-sums their totals. Each roster is written in its own transaction;
// a failing roster is reported in the result and does not stop the others.
func (s *RosterService) RecomputeWeek(ctx context.Context, competitionID uint, matchweek int) (*models.AggregateResult, error) {
	result := &models.AggregateResult{CompetitionID: competitionID, Matchweek: matchweek}

	records, err := s.ledger.ListForMatchweek(ctx, competitionID, matchweek)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeAggregationFailed, "failed to load matchweek points", err)
	}

	pointsByPlayer := make(map[uint]float64)
	for _, r := range records {
		pointsByPlayer[r.PlayerID] += r.Points
	}

	var rosters []models.FantasyRoster
	if err := s.db.WithContext(ctx).Preload("Players").Where("competition_id = ?", competitionID).Find(&rosters).Error; err != nil {
		return result, apperrors.Wrap(apperrors.CodeAggregationFailed, "failed to load rosters", err)
	}

	for _, roster := range rosters {
		updated, err := s.recomputeRoster(ctx, roster, matchweek, pointsByPlayer)
		if err != nil {
			s.log.Error().Err(err).
				Uint("roster_id", roster.ID).
				Uint("competition_id", competitionID).
				Int("matchweek", matchweek).
				Msg("Failed to recompute roster points")
			result.Failures = append(result.Failures, fmt.Sprintf("roster %d: %v", roster.ID, err))
			continue
		}
		if updated {
			result.RostersUpdated++
		} else {
			result.RostersSkipped++
		}
	}

	s.log.Info().
		Uint("competition_id", competitionID).
		Int("matchweek", matchweek).
		Int("updated", result.RostersUpdated).
		Int("skipped", result.RostersSkipped).
		Int("failures", len(result.Failures)).
		Msg("Recomputed matchweek roster points")

	if len(result.Failures) > 0 {
		return result, apperrors.WithMetadata(
			apperrors.CodeAggregationFailed,
			fmt.Sprintf("%d rosters failed to update", len(result.Failures)),
			map[string]string{
				"competition_id": strconv.FormatUint(uint64(competitionID), 10),
				"matchweek":      strconv.Itoa(matchweek),
			},
		)
	}
	return result, nil
}

func (s *RosterService) recomputeRoster(ctx context.Context, roster models.FantasyRoster, matchweek int, pointsByPlayer map[uint]float64) (bool, error) {
	var starters, bench float64
	contributing := false
	for _, rp := range roster.Players {
		points, ok := pointsByPlayer[rp.PlayerID]
		if !ok {
			continue
		}
		contributing = true
		if rp.Slot == models.SlotStarter {
			starters += points
		} else {
			bench += points
		}
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if !contributing {
		var existing int64
		if err := tx.Model(&models.WeeklyPoints{}).Where("roster_id = ? AND matchweek = ?", roster.ID, matchweek).Count(&existing).Error; err != nil {
			tx.Rollback()
			return false, err
		}
		if existing == 0 {
			tx.Rollback()
			return false, nil
		}
	}

	weekly := models.WeeklyPoints{
		RosterID:       roster.ID,
		Matchweek:      matchweek,
		Points:         starters + bench,
		StartersPoints: starters,
		BenchPoints:    bench,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "roster_id"}, {Name: "matchweek"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "starters_points", "bench_points", "updated_at"}),
	}).Create(&weekly).Error
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if _, err := resumTotal(tx, roster.ID); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}

// ResumTotal sets total_points of a roster to the sum of its weekly rows.
func (s *RosterService) ResumTotal(ctx context.Context, rosterID uint) (float64, error) {
	total, err := resumTotal(s.db.WithContext(ctx), rosterID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeAggregationFailed, "failed to re-sum roster total", err)
	}
	return total, nil
}

func resumTotal(db *gorm.DB, rosterID uint) (float64, error) {
	var total float64
	if err := db.Model(&models.WeeklyPoints{}).
		Select("COALESCE(SUM(points), 0)").
		Where("roster_id = ?", rosterID).
		Scan(&total).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	if err := db.Model(&models.FantasyRoster{}).
		Where("id = ?", rosterID).
		Updates(map[string]interface{}{"total_points": total, "last_updated": now}).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// WeeklySums returns SUM(weekly.points) per roster, keyed by roster ID.
func (s *RosterService) WeeklySums(ctx context.Context, rosterIDs []uint) (map[uint]float64, error) {
	sums := make(map[uint]float64, len(rosterIDs))
	if len(rosterIDs) == 0 {
		return sums, nil
	}

	var rows []struct {
		RosterID uint
		Total    float64
	}
	err := s.db.WithContext(ctx).Model(&models.WeeklyPoints{}).
		Select("roster_id, COALESCE(SUM(points), 0) AS total").
		Where("roster_id IN ?", rosterIDs).
		Group("roster_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to sum weekly points", err)
	}

	for _, row := range rows {
		sums[row.RosterID] = row.Total
	}
	return sums, nil
}

// ListRosters returns rosters with players and weekly rows, optionally for one competition.
func (s *RosterService) ListRosters(ctx context.Context, competitionID *uint) ([]models.FantasyRoster, error) {
	query := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("slot DESC, player_id") }).
		Preload("Players.Player").
		Preload("WeeklyPoints", func(db *gorm.DB) *gorm.DB { return db.Order("matchweek") })
	if competitionID != nil {
		query = query.Where("competition_id = ?", *competitionID)
	}

	var rosters []models.FantasyRoster
	if err := query.Order("id").Find(&rosters).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load rosters", err)
	}
	return rosters, nil
}
