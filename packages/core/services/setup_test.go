package services

import (
	"context"
	"testing"

	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/testutil"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	seed       *testutil.Seed
	rules      *RulesService
	ledger     *LedgerService
	rosters    *RosterService
	matches    *MatchService
	monitoring *MonitoringService
}

func newTestEnv(t *testing.T, workers int) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	log := zerolog.Nop()

	rules := NewRulesService(db)
	ledger := NewLedgerService(db)
	rosters := NewRosterService(db, ledger, log)
	matches := NewMatchService(db, rules, ledger, rosters, log)
	monitoring := NewMonitoringService(db, matches, ledger, rosters, workers, log)

	return &testEnv{
		db:         db,
		seed:       testutil.NewSeed(t, db),
		rules:      rules,
		ledger:     ledger,
		rosters:    rosters,
		matches:    matches,
		monitoring: monitoring,
	}
}

// doublesFixture is one matchweek-1 match between pair A (players 0, 1) and
// pair B (players 2, 3) with a roster starting players 0 and 2.
type doublesFixture struct {
	competition models.Competition
	players     []models.Player
	pairA       models.Pair
	pairB       models.Pair
	match       models.Match
	roster      models.FantasyRoster
}

func (e *testEnv) doubles(t *testing.T, rules *models.ScoringRules) doublesFixture {
	t.Helper()
	f := doublesFixture{}
	f.competition = e.seed.Competition(rules)
	f.players = e.seed.Players(4)
	f.pairA = e.seed.Pair(f.competition.ID, 1, f.players[0], f.players[1])
	f.pairB = e.seed.Pair(f.competition.ID, 1, f.players[2], f.players[3])
	f.match = e.seed.Match(f.competition.ID, 1, f.pairA, f.pairB)
	f.roster = e.seed.Roster(f.competition.ID, 1, []models.Player{f.players[0], f.players[2]}, nil)
	return f
}

// threeSetWin is 21-15, 18-21, 21-19 won by winner.
func threeSetWin(winner uint) models.SubmitMatchResultRequest {
	return models.SubmitMatchResultRequest{
		Set1:     models.SetScore{Pair1Score: 21, Pair2Score: 15},
		Set2:     models.SetScore{Pair1Score: 18, Pair2Score: 21},
		Set3:     models.SetScore{Pair1Score: 21, Pair2Score: 19},
		WinnerID: &winner,
	}
}

func defaultRulesRow() *models.ScoringRules {
	return &models.ScoringRules{}
}

func (e *testEnv) loadMatch(t *testing.T, id uint) models.Match {
	t.Helper()
	var match models.Match
	if err := e.db.First(&match, id).Error; err != nil {
		t.Fatalf("load match %d: %v", id, err)
	}
	return match
}

func (e *testEnv) loadRoster(t *testing.T, id uint) models.FantasyRoster {
	t.Helper()
	var roster models.FantasyRoster
	if err := e.db.Preload("WeeklyPoints").First(&roster, id).Error; err != nil {
		t.Fatalf("load roster %d: %v", id, err)
	}
	return roster
}

func (e *testEnv) pointsByPlayer(t *testing.T, matchID uint) map[uint]models.PlayerPoints {
	t.Helper()
	records, err := e.ledger.ListForMatch(context.Background(), matchID)
	if err != nil {
		t.Fatalf("ListForMatch: %v", err)
	}
	byPlayer := make(map[uint]models.PlayerPoints, len(records))
	for _, r := range records {
		byPlayer[r.PlayerID] = r
	}
	return byPlayer
}
