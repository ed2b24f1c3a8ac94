package services

import (
	"context"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/scoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService stores one PlayerPoints record per (player, match, competition, matchweek).
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{
		db: db,
	}
}

// WithTx returns a LedgerService bound to tx.
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{db: tx}
}

// RecordPoints upserts the record of a player for a match. Repeated calls overwrite.
func (s *LedgerService) RecordPoints(ctx context.Context, playerID, matchID, competitionID uint, matchweek int, breakdown scoring.Breakdown, recalculated bool) error {
	record := models.PlayerPoints{
		PlayerID:       playerID,
		MatchID:        matchID,
		CompetitionID:  competitionID,
		Matchweek:      matchweek,
		Points:         breakdown.Total,
		WinPoints:      breakdown.WinPoints,
		LossPoints:     breakdown.LossPoints,
		SetWinPoints:   breakdown.SetWinPoints,
		SetLossPoints:  breakdown.SetLossPoints,
		IsRecalculated: recalculated,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "player_id"},
			{Name: "match_id"},
			{Name: "competition_id"},
			{Name: "matchweek"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"points", "win_points", "loss_points", "set_win_points", "set_loss_points", "is_recalculated", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to record player points", err)
	}
	return nil
}

// MarkCalculated sets the points_calculated flag of a match.
func (s *LedgerService) MarkCalculated(ctx context.Context, matchID uint, calculated bool) error {
	err := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("points_calculated", calculated).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to update points_calculated", err)
	}
	return nil
}

// ClearForMatch deletes every record of a match and resets its flag.
// It must run in the same transaction as the recompute that follows it.
func (s *LedgerService) ClearForMatch(ctx context.Context, matchID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("match_id = ?", matchID).Delete(&models.PlayerPoints{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to clear player points", result.Error)
	}
	if err := s.MarkCalculated(ctx, matchID, false); err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}

func (s *LedgerService) ListForMatch(ctx context.Context, matchID uint) ([]models.PlayerPoints, error) {
	var records []models.PlayerPoints
	if err := s.db.WithContext(ctx).Where("match_id = ?", matchID).Order("player_id").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load player points", err)
	}
	return records, nil
}

func (s *LedgerService) ListForMatchweek(ctx context.Context, competitionID uint, matchweek int) ([]models.PlayerPoints, error) {
	var records []models.PlayerPoints
	err := s.db.WithContext(ctx).
		Where("competition_id = ? AND matchweek = ?", competitionID, matchweek).
		Order("player_id, match_id").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load player points", err)
	}
	return records, nil
}

// CountByMatch returns the number of records per match. Matches without records are absent.
func (s *LedgerService) CountByMatch(ctx context.Context, matchIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(matchIDs))
	if len(matchIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		MatchID uint
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&models.PlayerPoints{}).
		Select("match_id, COUNT(*) AS total").
		Where("match_id IN ?", matchIDs).
		Group("match_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to count player points", err)
	}

	for _, row := range rows {
		counts[row.MatchID] = row.Total
	}
	return counts, nil
}

// PlayerScores sums the ledger per player, highest total first.
func (s *LedgerService) PlayerScores(ctx context.Context, competitionID *uint, matchweek *int) ([]models.PlayerScore, error) {
	query := s.db.WithContext(ctx).Table("player_points AS pp").
		Select(`pp.player_id AS player_id,
			players.name AS player_name,
			COUNT(DISTINCT pp.match_id) AS matches_scored,
			COALESCE(SUM(pp.points), 0) AS total_points,
			COALESCE(SUM(pp.win_points), 0) AS win_points,
			COALESCE(SUM(pp.loss_points), 0) AS loss_points,
			COALESCE(SUM(pp.set_win_points), 0) AS set_win_points,
			COALESCE(SUM(pp.set_loss_points), 0) AS set_loss_points`).
		Joins("JOIN players ON players.id = pp.player_id")

	if competitionID != nil {
		query = query.Where("pp.competition_id = ?", *competitionID)
	}
	if matchweek != nil {
		query = query.Where("pp.matchweek = ?", *matchweek)
	}

	var scores []models.PlayerScore
	err := query.Group("pp.player_id, players.name").
		Order("total_points DESC, pp.player_id").
		Scan(&scores).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load player scores", err)
	}
	return scores, nil
}
