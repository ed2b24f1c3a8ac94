package models

import (
	"time"

	"fantasy-doubles-api/packages/core/scoring"
)

// PlayerPoints is the ledger record of one player's points for one match.
// Rows are hard deleted so the natural key can be reused after a recalculation.
type PlayerPoints struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID       uint      `gorm:"not null;uniqueIndex:idx_player_points_key" json:"player_id"`
	MatchID        uint      `gorm:"not null;uniqueIndex:idx_player_points_key;index" json:"match_id"`
	CompetitionID  uint      `gorm:"not null;uniqueIndex:idx_player_points_key" json:"competition_id"`
	Matchweek      int       `gorm:"not null;uniqueIndex:idx_player_points_key" json:"matchweek"`
	Points         float64   `gorm:"not null;default:0" json:"points"`
	WinPoints      float64   `gorm:"not null;default:0" json:"win_points"`
	LossPoints     float64   `gorm:"not null;default:0" json:"loss_points"`
	SetWinPoints   float64   `gorm:"not null;default:0" json:"set_win_points"`
	SetLossPoints  float64   `gorm:"not null;default:0" json:"set_loss_points"`
	IsRecalculated bool      `gorm:"not null;default:false" json:"is_recalculated"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Player Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

func (PlayerPoints) TableName() string {
	return "player_points"
}

func (p PlayerPoints) Breakdown() scoring.Breakdown {
	return scoring.Breakdown{
		WinPoints:     p.WinPoints,
		LossPoints:    p.LossPoints,
		SetWinPoints:  p.SetWinPoints,
		SetLossPoints: p.SetLossPoints,
		Total:         p.Points,
	}
}

// PlayerScore is a player's points summed across the ledger.
type PlayerScore struct {
	PlayerID      uint    `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	MatchesScored int64   `json:"matches_scored"`
	TotalPoints   float64 `json:"total_points"`
	WinPoints     float64 `json:"win_points"`
	LossPoints    float64 `json:"loss_points"`
	SetWinPoints  float64 `json:"set_win_points"`
	SetLossPoints float64 `json:"set_loss_points"`
}
