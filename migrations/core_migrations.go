package migrations

import (
	"fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// GetCoreMigrations returns the schema of the scoring engine in apply order.
func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_09_01_000000_create_reference_tables",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(
					&models.Competition{},
					&models.ScoringRules{},
					&models.Player{},
					&models.Pair{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.Pair{},
					&models.Player{},
					&models.ScoringRules{},
					&models.Competition{},
				)
			},
		},
		{
			Name: "2025_09_01_000100_create_matches_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.Match{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Match{})
			},
		},
		{
			Name: "2025_09_01_000200_create_player_points_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.PlayerPoints{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.PlayerPoints{})
			},
		},
		{
			Name: "2025_09_01_000300_create_fantasy_roster_tables",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(
					&models.FantasyRoster{},
					&models.RosterPlayer{},
					&models.WeeklyPoints{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.WeeklyPoints{},
					&models.RosterPlayer{},
					&models.FantasyRoster{},
				)
			},
		},
	}
}

// NewCoreMigrator returns a Migrator loaded with every core migration.
func NewCoreMigrator(db *gorm.DB, log zerolog.Logger) (*Migrator, error) {
	migrator, err := NewMigrator(db, log)
	if err != nil {
		return nil, err
	}
	for _, migration := range GetCoreMigrations() {
		migrator.AddMigration(migration)
	}
	return migrator, nil
}
