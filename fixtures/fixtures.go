package fixtures

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	fixtureMatchweeks  = 3
	playedMatchweeks   = 2
	fixtureRosterCount = 6
	startersPerRoster  = 4
	benchPerRoster     = 2
)

var playerNames = []string{
	"Alexandre Martin", "Marie Dubois", "Julien Bernard", "Sophie Laurent",
	"Thomas Petit", "Camille Durand", "Nicolas Leroy", "Laura Moreau",
	"Antoine Simon", "Emma Michel", "Hugo Lefebvre", "Chloe Garcia",
	"Lucas Roux", "Lea Fournier", "Louis Girard", "Manon Bonnet",
}

// Fixtures seeds a demo competition. Results go through MatchService so the
// ledger and the rosters are built by the real pipeline.
type Fixtures struct {
	db      *gorm.DB
	rules   *services.RulesService
	matches *services.MatchService
	rng     *rand.Rand
	log     zerolog.Logger
}

func NewFixtures(db *gorm.DB, rules *services.RulesService, matches *services.MatchService, seed int64, log zerolog.Logger) *Fixtures {
	return &Fixtures{
		db:      db,
		rules:   rules,
		matches: matches,
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404
		log:     log.With().Str("component", "fixtures").Logger(),
	}
}

// Summary counts what GenerateTestData created.
type Summary struct {
	CompetitionID  uint
	Players        int
	Pairs          int
	Matches        int
	ResultsScored  int
	Rosters        int
	ResultFailures []string
}

// GenerateTestData creates one competition with 16 players, three matchweeks
// of doubles matches, six rosters, and results for the first two matchweeks.
func (f *Fixtures) GenerateTestData(ctx context.Context) (*Summary, error) {
	f.log.Info().Msg("Starting fixtures generation")

	competition := models.Competition{Name: "Demo Doubles League", Status: models.CompetitionInProgress}
	if err := f.db.WithContext(ctx).Create(&competition).Error; err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}
	summary := &Summary{CompetitionID: competition.ID}

	winPoints := 10.0
	if _, err := f.rules.Upsert(ctx, competition.ID, models.UpsertScoringRulesRequest{WinPoints: &winPoints}); err != nil {
		return nil, fmt.Errorf("failed to create scoring rules: %w", err)
	}

	players, err := f.generatePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate players: %w", err)
	}
	summary.Players = len(players)

	rosters, err := f.generateRosters(ctx, competition.ID, players)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rosters: %w", err)
	}
	summary.Rosters = len(rosters)

	for week := 1; week <= fixtureMatchweeks; week++ {
		weekMatches, pairs, err := f.generateMatchweek(ctx, competition.ID, week, players)
		if err != nil {
			return nil, fmt.Errorf("failed to generate matchweek %d: %w", week, err)
		}
		summary.Pairs += pairs
		summary.Matches += len(weekMatches)

		if week > playedMatchweeks {
			continue
		}
		for _, match := range weekMatches {
			if _, err := f.matches.SubmitMatchResult(ctx, match.ID, f.randomResult(match)); err != nil {
				f.log.Error().Err(err).Uint("match_id", match.ID).Msg("Failed to submit fixture result")
				summary.ResultFailures = append(summary.ResultFailures, fmt.Sprintf("match %d: %v", match.ID, err))
				continue
			}
			summary.ResultsScored++
		}
	}

	f.log.Info().
		Uint("competition_id", summary.CompetitionID).
		Int("players", summary.Players).
		Int("matches", summary.Matches).
		Int("results", summary.ResultsScored).
		Int("rosters", summary.Rosters).
		Msg("Fixtures generated")
	return summary, nil
}

func (f *Fixtures) generatePlayers(ctx context.Context) ([]models.Player, error) {
	players := make([]models.Player, 0, len(playerNames))
	for i, name := range playerNames {
		player := models.Player{
			Name:     name,
			Club:     fmt.Sprintf("Club %c", 'A'+i%4),
			IsActive: true,
		}
		if err := f.db.WithContext(ctx).Create(&player).Error; err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// generateRosters gives each roster distinct starters and bench players.
func (f *Fixtures) generateRosters(ctx context.Context, competitionID uint, players []models.Player) ([]models.FantasyRoster, error) {
	var rosters []models.FantasyRoster
	for i := 0; i < fixtureRosterCount; i++ {
		roster := models.FantasyRoster{
			UserID:        uint(i + 1), // #nosec G115
			CompetitionID: competitionID,
			Name:          fmt.Sprintf("Team %d", i+1),
		}
		if err := f.db.WithContext(ctx).Create(&roster).Error; err != nil {
			return nil, err
		}

		picks := f.rng.Perm(len(players))[:startersPerRoster+benchPerRoster]
		for j, idx := range picks {
			slot := models.SlotStarter
			if j >= startersPerRoster {
				slot = models.SlotBench
			}
			entry := models.RosterPlayer{RosterID: roster.ID, PlayerID: players[idx].ID, Slot: slot}
			if err := f.db.WithContext(ctx).Create(&entry).Error; err != nil {
				return nil, err
			}
		}
		rosters = append(rosters, roster)
	}
	return rosters, nil
}

// generateMatchweek pairs every player once and schedules one match per two pairs.
func (f *Fixtures) generateMatchweek(ctx context.Context, competitionID uint, week int, players []models.Player) ([]models.Match, int, error) {
	order := f.rng.Perm(len(players))

	var pairs []models.Pair
	for i := 0; i+1 < len(order); i += 2 {
		pair := models.Pair{
			CompetitionID: competitionID,
			Matchweek:     week,
			Player1ID:     players[order[i]].ID,
			Player2ID:     players[order[i+1]].ID,
		}
		if err := f.db.WithContext(ctx).Create(&pair).Error; err != nil {
			return nil, 0, err
		}
		pairs = append(pairs, pair)
	}

	matchDate := time.Date(2025, time.September, 6, 10, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(week-1))

	var matches []models.Match
	for i := 0; i+1 < len(pairs); i += 2 {
		date := matchDate
		match := models.Match{
			CompetitionID: competitionID,
			Matchweek:     week,
			Pair1ID:       pairs[i].ID,
			Pair2ID:       pairs[i+1].ID,
			MatchDate:     &date,
		}
		if err := f.db.WithContext(ctx).Create(&match).Error; err != nil {
			return nil, 0, err
		}
		matches = append(matches, match)
	}
	return matches, len(pairs), nil
}

// randomResult plays a best-of-three match to 21.
func (f *Fixtures) randomResult(match models.Match) models.SubmitMatchResultRequest {
	var sets []models.SetScore
	won1, won2 := 0, 0
	for won1 < 2 && won2 < 2 {
		loser := f.rng.Intn(20) // #nosec G404
		if f.rng.Intn(2) == 0 { // #nosec G404
			sets = append(sets, models.SetScore{Pair1Score: 21, Pair2Score: loser})
			won1++
		} else {
			sets = append(sets, models.SetScore{Pair1Score: loser, Pair2Score: 21})
			won2++
		}
	}
	for len(sets) < 3 {
		sets = append(sets, models.SetScore{})
	}

	winner := match.Pair1ID
	if won2 > won1 {
		winner = match.Pair2ID
	}

	return models.SubmitMatchResultRequest{
		Set1:     sets[0],
		Set2:     sets[1],
		Set3:     sets[2],
		WinnerID: &winner,
	}
}

// ClearAllData removes every scoring table's rows.
func (f *Fixtures) ClearAllData(ctx context.Context) error {
	f.log.Info().Msg("Clearing all fixture data")

	// Delete in correct order due to foreign key constraints
	tables := []interface{}{
		&models.WeeklyPoints{},
		&models.RosterPlayer{},
		&models.FantasyRoster{},
		&models.PlayerPoints{},
		&models.Match{},
		&models.Pair{},
		&models.Player{},
		&models.ScoringRules{},
		&models.Competition{},
	}

	for _, table := range tables {
		if err := f.db.WithContext(ctx).Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}

	if f.db.Dialector.Name() != "postgres" {
		return nil
	}

	// Reset auto-increment sequences to start from 1
	sequences := []string{
		"competitions", "scoring_rules", "players", "pairs", "matches",
		"player_points", "fantasy_rosters", "roster_players", "roster_weekly_points",
	}
	for _, table := range sequences {
		if err := f.db.WithContext(ctx).Exec(fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1", table)).Error; err != nil {
			f.log.Warn().Err(err).Str("table", table).Msg("Failed to reset sequence")
		}
	}
	return nil
}
