package services

import (
	"context"
	"errors"
	"strconv"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/scoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RulesService resolves the effective scoring rules of a competition.
type RulesService struct {
	db *gorm.DB
}

func NewRulesService(db *gorm.DB) *RulesService {
	return &RulesService{
		db: db,
	}
}

// WithTx returns a RulesService that reads through tx.
func (s *RulesService) WithTx(tx *gorm.DB) *RulesService {
	return &RulesService{db: tx}
}

// Resolve loads the competition's rules and fills defaults for unset fields.
func (s *RulesService) Resolve(ctx context.Context, competitionID uint) (scoring.Rules, error) {
	var row models.ScoringRules
	if err := s.db.WithContext(ctx).Where("competition_id = ?", competitionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scoring.Rules{}, apperrors.WithMetadata(
				apperrors.CodeConfigNotFound,
				"no scoring rules configured for competition",
				map[string]string{"competition_id": strconv.FormatUint(uint64(competitionID), 10)},
			)
		}
		return scoring.Rules{}, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load scoring rules", err)
	}

	rules := row.Effective()
	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, err
	}
	return rules, nil
}

// Upsert creates or replaces the rule row of a competition.
func (s *RulesService) Upsert(ctx context.Context, competitionID uint, req models.UpsertScoringRulesRequest) (*models.ScoringRules, error) {
	row := models.ScoringRules{
		CompetitionID: competitionID,
		WinPoints:     req.WinPoints,
		LossPoints:    req.LossPoints,
		SetWinPoints:  req.SetWinPoints,
		SetLossPoints: req.SetLossPoints,
	}
	if err := row.Effective().Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "competition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"win_points", "loss_points", "set_win_points", "set_loss_points", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to save scoring rules", err)
	}
	return &row, nil
}
