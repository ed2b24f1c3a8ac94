package models

import (
	"time"

	"gorm.io/gorm"
)

type Player struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Club      string         `gorm:"size:255" json:"club"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Player) TableName() string {
	return "players"
}

// Pair is a doubles team of two players entered for one matchweek of a competition.
type Pair struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CompetitionID uint           `gorm:"not null;index" json:"competition_id"`
	Matchweek     int            `gorm:"not null" json:"matchweek"`
	Player1ID     uint           `gorm:"not null" json:"player1_id"`
	Player2ID     uint           `gorm:"not null" json:"player2_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Player1 Player `gorm:"foreignKey:Player1ID;references:ID" json:"player1,omitempty"`
	Player2 Player `gorm:"foreignKey:Player2ID;references:ID" json:"player2,omitempty"`
}

func (Pair) TableName() string {
	return "pairs"
}

// PlayerIDs returns both members of the pair.
func (p Pair) PlayerIDs() [2]uint {
	return [2]uint{p.Player1ID, p.Player2ID}
}
