package models

import (
	"time"

	"fantasy-doubles-api/packages/core/scoring"

	"gorm.io/gorm"
)

const (
	CompetitionUpcoming   = "upcoming"
	CompetitionInProgress = "in_progress"
	CompetitionFinished   = "finished"
)

type Competition struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Status    string         `gorm:"size:20;not null;default:upcoming" json:"status"` // upcoming, in_progress, finished
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	ScoringRules *ScoringRules `gorm:"foreignKey:CompetitionID" json:"scoring_rules,omitempty"`
}

func (Competition) TableName() string {
	return "competitions"
}

// ScoringRules is the per-competition scoring configuration. NULL fields fall back to defaults.
type ScoringRules struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompetitionID uint      `gorm:"not null;uniqueIndex" json:"competition_id"`
	WinPoints     *float64  `json:"win_points"`
	LossPoints    *float64  `json:"loss_points"`
	SetWinPoints  *float64  `json:"set_win_points"`
	SetLossPoints *float64  `json:"set_loss_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ScoringRules) TableName() string {
	return "scoring_rules"
}

// Effective returns the rules with defaults applied.
func (r ScoringRules) Effective() scoring.Rules {
	return scoring.EffectiveRules(r.WinPoints, r.LossPoints, r.SetWinPoints, r.SetLossPoints)
}

type UpsertScoringRulesRequest struct {
	WinPoints     *float64 `json:"win_points,omitempty"`
	LossPoints    *float64 `json:"loss_points,omitempty"`
	SetWinPoints  *float64 `json:"set_win_points,omitempty"`
	SetLossPoints *float64 `json:"set_loss_points,omitempty"`
}
