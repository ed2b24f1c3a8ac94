package services

import (
	"context"
	"errors"
	"strconv"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/scoring"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchService drives the scoring pipeline for match results:
// normalize, calculate, record in the ledger, then aggregate rosters.
type MatchService struct {
	db      *gorm.DB
	rules   *RulesService
	ledger  *LedgerService
	rosters *RosterService
	log     zerolog.Logger
}

func NewMatchService(db *gorm.DB, rules *RulesService, ledger *LedgerService, rosters *RosterService, log zerolog.Logger) *MatchService {
	return &MatchService{
		db:      db,
		rules:   rules,
		ledger:  ledger,
		rosters: rosters,
		log:     log.With().Str("service", "match").Logger(),
	}
}

type MatchFilters struct {
	CompetitionID *uint `json:"competition_id,omitempty"`
	Matchweek     *int  `json:"matchweek,omitempty"`
	IsCompleted   *bool `json:"is_completed,omitempty"`
	Page          int   `json:"page"`
	PerPage       int   `json:"per_page"`
}

func (s *MatchService) GetMatches(ctx context.Context, filters MatchFilters) (*models.PaginatedMatchResponse, error) {
	var matches []models.Match
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Match{})

	if filters.CompetitionID != nil {
		query = query.Where("competition_id = ?", *filters.CompetitionID)
	}
	if filters.Matchweek != nil {
		query = query.Where("matchweek = ?", *filters.Matchweek)
	}
	if filters.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filters.IsCompleted)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to count matches", err)
	}

	offset := (filters.Page - 1) * filters.PerPage

	result := query.
		Offset(offset).
		Limit(filters.PerPage).
		Order("matchweek, id").
		Preload("Pair1.Player1").
		Preload("Pair1.Player2").
		Preload("Pair2.Player1").
		Preload("Pair2.Player2").
		Find(&matches)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load matches", result.Error)
	}

	totalPages := int((total + int64(filters.PerPage) - 1) / int64(filters.PerPage))

	return &models.PaginatedMatchResponse{
		Data:       matches,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Preload("Pair1.Player1").
		Preload("Pair1.Player2").
		Preload("Pair2.Player1").
		Preload("Pair2.Player2").
		First(&match, matchID).Error
	if err != nil {
		return nil, matchLoadError(matchID, err)
	}
	return &match, nil
}

// SubmitMatchResult stores a result and propagates it to the ledger and the rosters.
// Submitting a new result for an already scored match is a correction: previous
// ledger records are replaced by the new ones.
func (s *MatchService) SubmitMatchResult(ctx context.Context, matchID uint, req models.SubmitMatchResultRequest) (*models.Match, error) {
	var match models.Match
	if err := s.db.WithContext(ctx).Preload("Pair1").Preload("Pair2").First(&match, matchID).Error; err != nil {
		return nil, matchLoadError(matchID, err)
	}

	// Validate before anything is written.
	if err := checkPairs(&match); err != nil {
		return nil, err
	}
	submitted := match.Result()
	submitted.Winner = req.WinnerID
	submitted.Sets = req.Sets()
	if _, err := scoring.Normalize(submitted); err != nil {
		return nil, err
	}

	correction := match.PointsCalculated

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	match.Set1 = req.Set1
	match.Set2 = req.Set2
	match.Set3 = req.Set3
	match.WinnerID = req.WinnerID
	match.IsCompleted = true
	match.PointsCalculated = false
	if req.MatchDate != nil {
		match.MatchDate = req.MatchDate
	}

	if err := tx.Omit(clause.Associations).Save(&match).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to save match result", err)
	}

	cleared, err := s.ledger.WithTx(tx).ClearForMatch(ctx, match.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to save match result", err)
	}

	s.log.Info().
		Uint("match_id", match.ID).
		Uint("competition_id", match.CompetitionID).
		Int("matchweek", match.Matchweek).
		Bool("correction", correction).
		Msg("Match result saved")

	if err := s.CalculateMatchPoints(ctx, match.ID, correction); err != nil {
		if cleared > 0 {
			// Rosters still carry the points of the previous result.
			if _, aggErr := s.rosters.RecomputeWeek(ctx, match.CompetitionID, match.Matchweek); aggErr != nil {
				s.log.Error().Err(aggErr).Uint("match_id", match.ID).Msg("Failed to recompute rosters after cleared result")
			}
		}
		return nil, err
	}

	if err := s.aggregate(ctx, &match); err != nil {
		return nil, err
	}

	return s.GetMatch(ctx, match.ID)
}

// RecalculateMatch clears and recomputes the ledger records of a match, then
// recomputes its matchweek. A match without a completed result is only cleared.
func (s *MatchService) RecalculateMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var match models.Match
	if err := s.db.WithContext(ctx).First(&match, matchID).Error; err != nil {
		return nil, matchLoadError(matchID, err)
	}

	if err := s.CalculateMatchPoints(ctx, match.ID, true); err != nil {
		if apperrors.HasCode(err, apperrors.CodeMissingWinner) {
			// The stale records were cleared.
			if _, aggErr := s.rosters.RecomputeWeek(ctx, match.CompetitionID, match.Matchweek); aggErr != nil {
				s.log.Error().Err(aggErr).Uint("match_id", match.ID).Msg("Failed to recompute rosters after cleared result")
			}
		}
		return nil, err
	}

	if err := s.aggregate(ctx, &match); err != nil {
		return nil, err
	}

	return s.GetMatch(ctx, match.ID)
}

// CalculateMatchPoints runs the ledger phase of the pipeline in one transaction:
// clear the match's records, resolve rules, normalize, calculate, record all four
// players and set points_calculated. Any failure rolls the whole phase back and
// leaves the match flagged as not calculated.
func (s *MatchService) CalculateMatchPoints(ctx context.Context, matchID uint, recalculated bool) error {
	err := s.calculateInTx(ctx, matchID, recalculated)
	if err == nil {
		return nil
	}

	s.log.Error().Err(err).
		Uint("match_id", matchID).
		Str("code", string(apperrors.CodeOf(err))).
		Msg("Failed to calculate match points")

	if flagErr := s.ledger.MarkCalculated(ctx, matchID, false); flagErr != nil {
		s.log.Error().Err(flagErr).Uint("match_id", matchID).Msg("Failed to reset points_calculated")
	}
	return err
}

func (s *MatchService) calculateInTx(ctx context.Context, matchID uint, recalculated bool) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var match models.Match
	if err := tx.Preload("Pair1").Preload("Pair2").First(&match, matchID).Error; err != nil {
		tx.Rollback()
		return matchLoadError(matchID, err)
	}

	ledger := s.ledger.WithTx(tx)
	if _, err := ledger.ClearForMatch(ctx, match.ID); err != nil {
		tx.Rollback()
		return err
	}

	if !match.IsCompleted {
		if err := tx.Commit().Error; err != nil {
			return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to commit cleared match", err)
		}
		s.log.Info().Uint("match_id", match.ID).Msg("Match has no result, points cleared")
		return nil
	}

	if match.WinnerID == nil {
		if err := tx.Commit().Error; err != nil {
			return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to commit cleared match", err)
		}
		return apperrors.WithMetadata(
			apperrors.CodeMissingWinner,
			"completed match has no winner",
			map[string]string{"match_id": strconv.FormatUint(uint64(match.ID), 10)},
		)
	}

	if err := checkPairs(&match); err != nil {
		tx.Rollback()
		return err
	}

	rules, err := s.rules.WithTx(tx).Resolve(ctx, match.CompetitionID)
	if err != nil {
		tx.Rollback()
		return err
	}

	outcome, err := scoring.Normalize(match.Result())
	if err != nil {
		tx.Rollback()
		return err
	}

	pairA, pairB := scoring.PairBreakdowns(outcome, rules)
	entries := []struct {
		players   [2]uint
		breakdown scoring.Breakdown
	}{
		{match.Pair1.PlayerIDs(), pairA},
		{match.Pair2.PlayerIDs(), pairB},
	}
	for _, entry := range entries {
		for _, playerID := range entry.players {
			if err := ledger.RecordPoints(ctx, playerID, match.ID, match.CompetitionID, match.Matchweek, entry.breakdown, recalculated); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := ledger.MarkCalculated(ctx, match.ID, true); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to commit match points", err)
	}

	s.log.Info().
		Uint("match_id", match.ID).
		Float64("pair1_points", pairA.Total).
		Float64("pair2_points", pairB.Total).
		Bool("recalculated", recalculated).
		Msg("Match points recorded")
	return nil
}

// aggregate recomputes the match's week. On failure the match is flagged as not
// calculated so it shows up in anomaly detection.
func (s *MatchService) aggregate(ctx context.Context, match *models.Match) error {
	if _, err := s.rosters.RecomputeWeek(ctx, match.CompetitionID, match.Matchweek); err != nil {
		if flagErr := s.ledger.MarkCalculated(ctx, match.ID, false); flagErr != nil {
			s.log.Error().Err(flagErr).Uint("match_id", match.ID).Msg("Failed to reset points_calculated")
		}
		if apperrors.HasCode(err, apperrors.CodeAggregationFailed) {
			return err
		}
		return apperrors.Wrap(apperrors.CodeAggregationFailed, "failed to update rosters", err)
	}
	return nil
}

// DeleteMatch removes a match with its ledger records and recomputes its matchweek.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID uint) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var match models.Match
	if err := tx.First(&match, matchID).Error; err != nil {
		tx.Rollback()
		return matchLoadError(matchID, err)
	}

	if _, err := s.ledger.WithTx(tx).ClearForMatch(ctx, match.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&match).Error; err != nil {
		tx.Rollback()
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to delete match", err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to delete match", err)
	}

	s.log.Info().Uint("match_id", match.ID).Msg("Match deleted")

	if _, err := s.rosters.RecomputeWeek(ctx, match.CompetitionID, match.Matchweek); err != nil {
		return err
	}
	return nil
}

func matchLoadError(matchID uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.WithMetadata(
			apperrors.CodeNotFound,
			"match not found",
			map[string]string{"match_id": strconv.FormatUint(uint64(matchID), 10)},
		)
	}
	return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load match", err)
}

// checkPairs reports a pair of the match that is missing or soft-deleted.
// Pair1 and Pair2 must be preloaded.
func checkPairs(match *models.Match) error {
	for _, pair := range []struct {
		id     uint
		loaded models.Pair
	}{
		{match.Pair1ID, match.Pair1},
		{match.Pair2ID, match.Pair2},
	} {
		if pair.loaded.ID == 0 || pair.loaded.ID != pair.id {
			return apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"pair not found",
				map[string]string{
					"match_id": strconv.FormatUint(uint64(match.ID), 10),
					"pair_id":  strconv.FormatUint(uint64(pair.id), 10),
				},
			)
		}
	}
	return nil
}

// completedMatches returns completed matches in the filter, oldest matchweek first.
func (s *MatchService) completedMatches(ctx context.Context, filter models.AnomalyFilter) ([]models.Match, error) {
	query := s.db.WithContext(ctx).Where("is_completed = ?", true)
	query = applyAnomalyFilter(query, filter)

	var matches []models.Match
	if err := query.Order("competition_id, matchweek, id").Find(&matches).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load completed matches", err)
	}
	return matches, nil
}

func applyAnomalyFilter(query *gorm.DB, filter models.AnomalyFilter) *gorm.DB {
	if filter.CompetitionID != nil {
		query = query.Where("competition_id = ?", *filter.CompetitionID)
	}
	if filter.Matchweek != nil {
		query = query.Where("matchweek = ?", *filter.Matchweek)
	}
	return query
}
