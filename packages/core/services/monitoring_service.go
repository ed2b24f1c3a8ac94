package services

import (
	"context"
	"math"
	"sort"
	"sync"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// pointsTolerance is the largest drift between a stored total and its re-sum
// that is not reported as an anomaly.
const pointsTolerance = 0.01

// MonitoringService detects inconsistencies between matches, the ledger and
// the rosters, and re-drives the pipeline to repair them.
type MonitoringService struct {
	db      *gorm.DB
	matches *MatchService
	ledger  *LedgerService
	rosters *RosterService
	workers int
	log     zerolog.Logger
}

func NewMonitoringService(db *gorm.DB, matches *MatchService, ledger *LedgerService, rosters *RosterService, workers int, log zerolog.Logger) *MonitoringService {
	if workers < 1 {
		workers = 1
	}
	return &MonitoringService{
		db:      db,
		matches: matches,
		ledger:  ledger,
		rosters: rosters,
		workers: workers,
		log:     log.With().Str("service", "monitoring").Logger(),
	}
}

// DetectAnomalies reports every non-empty anomaly class in the filter.
func (s *MonitoringService) DetectAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.AnomalyReport, error) {
	reports := []models.AnomalyReport{}

	var withoutResults []models.Match
	if err := applyAnomalyFilter(s.db.WithContext(ctx), filter).
		Where("is_completed = ?", false).
		Order("id").
		Find(&withoutResults).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load matches without results", err)
	}
	reports = appendMatchReport(reports, models.AnomalyMatchesWithoutResults, withoutResults)

	var withoutPoints []models.Match
	if err := applyAnomalyFilter(s.db.WithContext(ctx), filter).
		Where("is_completed = ? AND points_calculated = ?", true, false).
		Order("id").
		Find(&withoutPoints).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load matches without points", err)
	}
	reports = appendMatchReport(reports, models.AnomalyMatchesWithoutPoints, withoutPoints)

	completed, err := s.matches.completedMatches(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(completed))
	for _, m := range completed {
		ids = append(ids, m.ID)
	}
	counts, err := s.ledger.CountByMatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	var withoutRecords []models.Match
	for _, m := range completed {
		if counts[m.ID] == 0 {
			withoutRecords = append(withoutRecords, m)
		}
	}
	reports = appendMatchReport(reports, models.AnomalyMatchesWithoutPlayerPoints, withoutRecords)

	inconsistent, err := s.inconsistentRosters(ctx, filter.CompetitionID)
	if err != nil {
		return nil, err
	}
	if len(inconsistent) > 0 {
		reports = append(reports, models.AnomalyReport{
			Type:    models.AnomalyInconsistentFantasyPoints,
			Count:   len(inconsistent),
			Details: inconsistent,
		})
	}

	return reports, nil
}

func appendMatchReport(reports []models.AnomalyReport, kind string, matches []models.Match) []models.AnomalyReport {
	if len(matches) == 0 {
		return reports
	}
	details := make([]models.AnomalyItem, 0, len(matches))
	for _, m := range matches {
		details = append(details, models.AnomalyItem{
			MatchID:       m.ID,
			CompetitionID: m.CompetitionID,
			Matchweek:     m.Matchweek,
		})
	}
	return append(reports, models.AnomalyReport{Type: kind, Count: len(details), Details: details})
}

func (s *MonitoringService) inconsistentRosters(ctx context.Context, competitionID *uint) ([]models.AnomalyItem, error) {
	query := s.db.WithContext(ctx).Model(&models.FantasyRoster{})
	if competitionID != nil {
		query = query.Where("competition_id = ?", *competitionID)
	}

	var rosters []models.FantasyRoster
	if err := query.Order("id").Find(&rosters).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load rosters", err)
	}

	ids := make([]uint, 0, len(rosters))
	for _, r := range rosters {
		ids = append(ids, r.ID)
	}
	sums, err := s.rosters.WeeklySums(ctx, ids)
	if err != nil {
		return nil, err
	}

	var items []models.AnomalyItem
	for _, r := range rosters {
		expected := sums[r.ID]
		if math.Abs(expected-r.TotalPoints) > pointsTolerance {
			items = append(items, models.AnomalyItem{
				RosterID:      r.ID,
				CompetitionID: r.CompetitionID,
				Stored:        r.TotalPoints,
				Expected:      expected,
			})
		}
	}
	return items, nil
}

// FixErrors repairs the filter's scope. Per-item failures are recorded in the
// result and never abort the run.
func (s *MonitoringService) FixErrors(ctx context.Context, fixType string, filter models.AnomalyFilter) (*models.FixResult, error) {
	switch fixType {
	case models.FixRecalculateMatchPoints, models.FixRecalculateFantasyPoints, models.FixBoth:
	default:
		return nil, apperrors.WithMetadata(
			apperrors.CodeInvalidFixType,
			"fix_type must be recalculate_match_points, recalculate_fantasy_points or both",
			map[string]string{"fix_type": fixType},
		)
	}

	result := &models.FixResult{FixType: fixType, Fixes: []string{}}

	if fixType == models.FixRecalculateMatchPoints || fixType == models.FixBoth {
		if err := s.fixMatchPoints(ctx, filter, result); err != nil {
			return result, err
		}
	}

	if fixType == models.FixRecalculateFantasyPoints || fixType == models.FixBoth {
		if err := s.fixFantasyPoints(ctx, filter.CompetitionID, result); err != nil {
			return result, err
		}
	}

	s.log.Info().
		Int("fixes_applied", result.FixesApplied).
		Int("failures", result.Failures).
		Msg(result.Summary())
	return result, nil
}

type weekKey struct {
	competitionID uint
	matchweek     int
}

// fixMatchPoints recalculates every completed match in the filter, then
// recomputes each affected matchweek once.
func (s *MonitoringService) fixMatchPoints(ctx context.Context, filter models.AnomalyFilter, result *models.FixResult) error {
	matches, err := s.matches.completedMatches(ctx, filter)
	if err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		weeks = make(map[weekKey][]uint)
	)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, match := range matches {
		g.Go(func() error {
			err := s.matches.CalculateMatchPoints(ctx, match.ID, true)

			mu.Lock()
			defer mu.Unlock()
			key := weekKey{match.CompetitionID, match.Matchweek}
			if err != nil {
				result.AddError("match %d: %s: %v", match.ID, apperrors.CodeOf(err), err)
				if apperrors.HasCode(err, apperrors.CodeMissingWinner) {
					// Its records were cleared.
					weeks[key] = append(weeks[key], match.ID)
				}
				return nil
			}
			result.AddFix("match %d: points recalculated", match.ID)
			weeks[key] = append(weeks[key], match.ID)
			return nil
		})
	}
	_ = g.Wait()

	keys := make([]weekKey, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].competitionID != keys[j].competitionID {
			return keys[i].competitionID < keys[j].competitionID
		}
		return keys[i].matchweek < keys[j].matchweek
	})

	for _, key := range keys {
		if _, err := s.rosters.RecomputeWeek(ctx, key.competitionID, key.matchweek); err != nil {
			result.AddError("competition %d matchweek %d: %v", key.competitionID, key.matchweek, err)
			for _, matchID := range weeks[key] {
				if flagErr := s.ledger.MarkCalculated(ctx, matchID, false); flagErr != nil {
					s.log.Error().Err(flagErr).Uint("match_id", matchID).Msg("Failed to reset points_calculated")
				}
			}
		}
	}
	return nil
}

func (s *MonitoringService) fixFantasyPoints(ctx context.Context, competitionID *uint, result *models.FixResult) error {
	query := s.db.WithContext(ctx).Model(&models.FantasyRoster{})
	if competitionID != nil {
		query = query.Where("competition_id = ?", *competitionID)
	}

	var rosterIDs []uint
	if err := query.Order("id").Pluck("id", &rosterIDs).Error; err != nil {
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load rosters", err)
	}

	for _, id := range rosterIDs {
		total, err := s.rosters.ResumTotal(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Uint("roster_id", id).Msg("Failed to re-sum roster total")
			result.AddError("roster %d: %v", id, err)
			continue
		}
		result.AddFix("roster %d: total re-summed to %.2f", id, total)
	}
	return nil
}

// GetSquads returns every roster of the competition with its points for one matchweek.
func (s *MonitoringService) GetSquads(ctx context.Context, competitionID uint, matchweek int) ([]models.SquadView, error) {
	rosters, err := s.rosters.ListRosters(ctx, &competitionID)
	if err != nil {
		return nil, err
	}

	records, err := s.ledger.ListForMatchweek(ctx, competitionID, matchweek)
	if err != nil {
		return nil, err
	}
	byPlayer := make(map[uint][]models.PlayerPoints)
	for _, r := range records {
		byPlayer[r.PlayerID] = append(byPlayer[r.PlayerID], r)
	}

	squads := make([]models.SquadView, 0, len(rosters))
	for _, roster := range rosters {
		view := models.SquadView{
			RosterID:    roster.ID,
			UserID:      roster.UserID,
			Name:        roster.Name,
			TotalPoints: roster.TotalPoints,
			Matchweek:   matchweek,
			Players:     roster.Players,
			Records:     []models.PlayerPoints{},
		}
		for _, wp := range roster.WeeklyPoints {
			if wp.Matchweek == matchweek {
				view.WeeklyPoints = wp.Points
				view.StartersPoints = wp.StartersPoints
				view.BenchPoints = wp.BenchPoints
			}
		}
		for _, rp := range roster.Players {
			view.Records = append(view.Records, byPlayer[rp.PlayerID]...)
		}
		squads = append(squads, view)
	}
	return squads, nil
}

func (s *MonitoringService) GetPlayerScores(ctx context.Context, competitionID *uint, matchweek *int) ([]models.PlayerScore, error) {
	return s.ledger.PlayerScores(ctx, competitionID, matchweek)
}

func (s *MonitoringService) GetDashboard(ctx context.Context, competitionID *uint) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	db := s.db.WithContext(ctx)

	scoped := func(model interface{}, column string) *gorm.DB {
		query := db.Model(model)
		if competitionID != nil {
			query = query.Where(column+" = ?", *competitionID)
		}
		return query
	}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{scoped(&models.Competition{}, "id"), &dashboard.TotalCompetitions},
		{db.Model(&models.Player{}).Where("is_active = ?", true), &dashboard.ActivePlayers},
		{scoped(&models.FantasyRoster{}, "competition_id"), &dashboard.TotalRosters},
		{scoped(&models.Match{}, "competition_id"), &dashboard.TotalMatches},
		{scoped(&models.Match{}, "competition_id").Where("is_completed = ?", true), &dashboard.CompletedMatches},
		{scoped(&models.Match{}, "competition_id").Where("points_calculated = ?", true), &dashboard.CalculatedMatches},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodePersistenceFailure, "failed to load dashboard", err)
		}
	}
	return &dashboard, nil
}
