package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SlotStarter = "starter"
	SlotBench   = "bench"
)

type FantasyRoster struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_roster_user_competition" json:"user_id"`
	CompetitionID uint           `gorm:"not null;uniqueIndex:idx_roster_user_competition" json:"competition_id"`
	Name          string         `gorm:"size:255" json:"name"`
	TotalPoints   float64        `gorm:"not null;default:0" json:"total_points"`
	TransfersUsed int            `gorm:"not null;default:0" json:"transfers_used"`
	LastUpdated   *time.Time     `json:"last_updated"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Players      []RosterPlayer `gorm:"foreignKey:RosterID" json:"players,omitempty"`
	WeeklyPoints []WeeklyPoints `gorm:"foreignKey:RosterID" json:"weekly_points,omitempty"`
}

func (FantasyRoster) TableName() string {
	return "fantasy_rosters"
}

// RosterPlayer places a player on a roster as starter or bench. A player holds one slot per roster.
type RosterPlayer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RosterID  uint      `gorm:"not null;uniqueIndex:idx_roster_player" json:"roster_id"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_roster_player" json:"player_id"`
	Slot      string    `gorm:"size:10;not null" json:"slot"` // starter, bench
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Player Player `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

func (RosterPlayer) TableName() string {
	return "roster_players"
}

type WeeklyPoints struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RosterID       uint      `gorm:"not null;uniqueIndex:idx_roster_week" json:"roster_id"`
	Matchweek      int       `gorm:"not null;uniqueIndex:idx_roster_week" json:"matchweek"`
	Points         float64   `gorm:"not null;default:0" json:"points"`
	StartersPoints float64   `gorm:"not null;default:0" json:"starters_points"`
	BenchPoints    float64   `gorm:"not null;default:0" json:"bench_points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (WeeklyPoints) TableName() string {
	return "roster_weekly_points"
}

// AggregateResult summarises one RecomputeWeek run.
type AggregateResult struct {
	CompetitionID  uint     `json:"competition_id"`
	Matchweek      int      `json:"matchweek"`
	RostersUpdated int      `json:"rosters_updated"`
	RostersSkipped int      `json:"rosters_skipped"`
	Failures       []string `json:"failures,omitempty"`
}
