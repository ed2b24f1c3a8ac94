package models

import (
	"time"

	"fantasy-doubles-api/packages/core/scoring"

	"gorm.io/gorm"
)

// SetScore is the games won by each pair in one set. Unplayed sets stay 0-0.
type SetScore struct {
	Pair1Score int `gorm:"not null;default:0" json:"pair1_score"`
	Pair2Score int `gorm:"not null;default:0" json:"pair2_score"`
}

type Match struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CompetitionID    uint           `gorm:"not null;index" json:"competition_id"`
	Matchweek        int            `gorm:"not null;index" json:"matchweek"`
	Pair1ID          uint           `gorm:"not null" json:"pair1_id"`
	Pair2ID          uint           `gorm:"not null" json:"pair2_id"`
	Set1             SetScore       `gorm:"embedded;embeddedPrefix:set1_" json:"set1"`
	Set2             SetScore       `gorm:"embedded;embeddedPrefix:set2_" json:"set2"`
	Set3             SetScore       `gorm:"embedded;embeddedPrefix:set3_" json:"set3"`
	WinnerID         *uint          `json:"winner_id"`
	IsCompleted      bool           `gorm:"not null;default:false" json:"is_completed"`
	PointsCalculated bool           `gorm:"not null;default:false" json:"points_calculated"`
	MatchDate        *time.Time     `json:"match_date"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Competition Competition `gorm:"foreignKey:CompetitionID;references:ID" json:"competition,omitempty"`
	Pair1       Pair        `gorm:"foreignKey:Pair1ID;references:ID" json:"pair1,omitempty"`
	Pair2       Pair        `gorm:"foreignKey:Pair2ID;references:ID" json:"pair2,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

// Result converts the stored match into the input of scoring.Normalize.
// Pair1 and Pair2 must be preloaded.
func (m Match) Result() scoring.MatchResult {
	return scoring.MatchResult{
		PairA:        m.Pair1ID,
		PairB:        m.Pair2ID,
		PairAPlayers: m.Pair1.PlayerIDs(),
		PairBPlayers: m.Pair2.PlayerIDs(),
		Winner:       m.WinnerID,
		Sets: [scoring.MaxSets]scoring.SetScore{
			{PairA: m.Set1.Pair1Score, PairB: m.Set1.Pair2Score},
			{PairA: m.Set2.Pair1Score, PairB: m.Set2.Pair2Score},
			{PairA: m.Set3.Pair1Score, PairB: m.Set3.Pair2Score},
		},
	}
}

type PaginatedMatchResponse struct {
	Data       []Match `json:"data"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

type SubmitMatchResultRequest struct {
	Set1      SetScore   `json:"set1"`
	Set2      SetScore   `json:"set2"`
	Set3      SetScore   `json:"set3"`
	WinnerID  *uint      `json:"winner_id"`
	MatchDate *time.Time `json:"match_date,omitempty"`
}

// Sets returns the submitted set scores in scoring order.
func (r SubmitMatchResultRequest) Sets() [scoring.MaxSets]scoring.SetScore {
	return [scoring.MaxSets]scoring.SetScore{
		{PairA: r.Set1.Pair1Score, PairB: r.Set1.Pair2Score},
		{PairA: r.Set2.Pair1Score, PairB: r.Set2.Pair2Score},
		{PairA: r.Set3.Pair1Score, PairB: r.Set3.Pair2Score},
	}
}
