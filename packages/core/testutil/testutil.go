// Package testutil opens migrated in-memory databases and seeds them for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"fantasy-doubles-api/migrations"
	"fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB returns an in-memory sqlite database private to t with every core
// migration applied. The pool holds a single connection so the database lives
// as long as the test.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migrations.NewCoreMigrator(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("new migrator: %v", err)
	}
	if _, err := migrator.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seed creates rows directly, bypassing the services under test.
type Seed struct {
	t  testing.TB
	db *gorm.DB
}

func NewSeed(t testing.TB, db *gorm.DB) *Seed {
	return &Seed{t: t, db: db}
}

func (s *Seed) create(value interface{}) {
	s.t.Helper()
	if err := s.db.Omit(clause.Associations).Create(value).Error; err != nil {
		s.t.Fatalf("seed %T: %v", value, err)
	}
}

// Competition creates a competition. A nil rules leaves it without a rule row.
func (s *Seed) Competition(rules *models.ScoringRules) models.Competition {
	s.t.Helper()
	competition := models.Competition{Name: "Test League", Status: models.CompetitionInProgress}
	s.create(&competition)
	if rules != nil {
		rules.CompetitionID = competition.ID
		s.create(rules)
	}
	return competition
}

func (s *Seed) Players(n int) []models.Player {
	s.t.Helper()
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{Name: fmt.Sprintf("Player %d", i+1), IsActive: true}
		s.create(&players[i])
	}
	return players
}

func (s *Seed) Pair(competitionID uint, matchweek int, p1, p2 models.Player) models.Pair {
	s.t.Helper()
	pair := models.Pair{CompetitionID: competitionID, Matchweek: matchweek, Player1ID: p1.ID, Player2ID: p2.ID}
	s.create(&pair)
	return pair
}

// Match creates a scheduled match without a result.
func (s *Seed) Match(competitionID uint, matchweek int, pair1, pair2 models.Pair) models.Match {
	s.t.Helper()
	match := models.Match{CompetitionID: competitionID, Matchweek: matchweek, Pair1ID: pair1.ID, Pair2ID: pair2.ID}
	s.create(&match)
	return match
}

func (s *Seed) Roster(competitionID, userID uint, starters, bench []models.Player) models.FantasyRoster {
	s.t.Helper()
	roster := models.FantasyRoster{UserID: userID, CompetitionID: competitionID, Name: fmt.Sprintf("Roster %d", userID)}
	s.create(&roster)
	for _, p := range starters {
		s.create(&models.RosterPlayer{RosterID: roster.ID, PlayerID: p.ID, Slot: models.SlotStarter})
	}
	for _, p := range bench {
		s.create(&models.RosterPlayer{RosterID: roster.ID, PlayerID: p.ID, Slot: models.SlotBench})
	}
	return roster
}

func FloatPtr(v float64) *float64 { return &v }

func UintPtr(v uint) *uint { return &v }

func IntPtr(v int) *int { return &v }
