package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/testutil"
)

func TestSubmitMatchResultPropagatesPoints(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	match, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID))
	if err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}
	if !match.IsCompleted || !match.PointsCalculated {
		t.Fatalf("flags = (completed %v, calculated %v), want both true", match.IsCompleted, match.PointsCalculated)
	}

	points := env.pointsByPlayer(t, f.match.ID)
	if len(points) != 4 {
		t.Fatalf("records = %d, want 4", len(points))
	}
	want := map[uint]float64{
		f.players[0].ID: 17,
		f.players[1].ID: 17,
		f.players[2].ID: 10,
		f.players[3].ID: 10,
	}
	for playerID, total := range want {
		record := points[playerID]
		if record.Points != total {
			t.Errorf("player %d points = %v, want %v", playerID, record.Points, total)
		}
		if record.IsRecalculated {
			t.Errorf("player %d is_recalculated = true on first calculation", playerID)
		}
		if record.CompetitionID != f.competition.ID || record.Matchweek != 1 {
			t.Errorf("player %d record scope = (%d, %d)", playerID, record.CompetitionID, record.Matchweek)
		}
	}
	if winner := points[f.players[0].ID]; winner.WinPoints != 10 || winner.SetWinPoints != 6 || winner.SetLossPoints != 1 {
		t.Errorf("winner breakdown = %+v", winner.Breakdown())
	}

	roster := env.loadRoster(t, f.roster.ID)
	if roster.TotalPoints != 27 {
		t.Fatalf("roster total = %v, want 27", roster.TotalPoints)
	}
	if len(roster.WeeklyPoints) != 1 || roster.WeeklyPoints[0].Points != 27 || roster.WeeklyPoints[0].StartersPoints != 27 {
		t.Fatalf("weekly rows = %+v, want one row of 27 starter points", roster.WeeklyPoints)
	}
	if roster.LastUpdated == nil {
		t.Fatal("last_updated not set")
	}
}

func TestSubmitMatchResultIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
			t.Fatalf("SubmitMatchResult #%d: %v", i+1, err)
		}
	}

	points := env.pointsByPlayer(t, f.match.ID)
	if len(points) != 4 {
		t.Fatalf("records = %d, want 4", len(points))
	}
	if !points[f.players[0].ID].IsRecalculated {
		t.Error("resubmission should mark records as recalculated")
	}

	roster := env.loadRoster(t, f.roster.ID)
	if roster.TotalPoints != 27 {
		t.Fatalf("roster total = %v, want 27", roster.TotalPoints)
	}
	if len(roster.WeeklyPoints) != 1 {
		t.Fatalf("weekly rows = %d, want 1", len(roster.WeeklyPoints))
	}
}

func TestSubmitMatchResultWinnerCorrection(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	// Bench the second member of pair A so both pairs count for the roster.
	roster := env.seed.Roster(f.competition.ID, 2,
		[]models.Player{f.players[0], f.players[1]},
		[]models.Player{f.players[2]},
	)

	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}
	if got := env.loadRoster(t, roster.ID).TotalPoints; got != 44 {
		t.Fatalf("roster total = %v, want 44", got)
	}

	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairB.ID)); err != nil {
		t.Fatalf("SubmitMatchResult correction: %v", err)
	}

	points := env.pointsByPlayer(t, f.match.ID)
	if len(points) != 4 {
		t.Fatalf("records = %d, want 4", len(points))
	}
	if got := points[f.players[0].ID].Points; got != 12 {
		t.Errorf("pair A points = %v, want 12", got)
	}
	if got := points[f.players[2].ID].Points; got != 15 {
		t.Errorf("pair B points = %v, want 15", got)
	}

	corrected := env.loadRoster(t, roster.ID)
	if corrected.TotalPoints != 39 {
		t.Fatalf("roster total = %v, want 39", corrected.TotalPoints)
	}
	weekly := corrected.WeeklyPoints[0]
	if weekly.StartersPoints != 24 || weekly.BenchPoints != 15 {
		t.Fatalf("weekly split = (%v, %v), want (24, 15)", weekly.StartersPoints, weekly.BenchPoints)
	}
}

func TestSubmitMatchResultRejectsInvalidWinner(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())

	_, err := env.matches.SubmitMatchResult(context.Background(), f.match.ID, threeSetWin(f.pairB.ID+100))
	if !apperrors.HasCode(err, apperrors.CodeInvalidWinner) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidWinner)
	}

	match := env.loadMatch(t, f.match.ID)
	if match.IsCompleted || match.WinnerID != nil {
		t.Fatal("rejected result must not be saved")
	}
	if points := env.pointsByPlayer(t, f.match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}
	if got := env.loadRoster(t, f.roster.ID); got.TotalPoints != 0 || len(got.WeeklyPoints) != 0 {
		t.Fatalf("roster touched by rejected result: %+v", got)
	}
}

func TestSubmitMatchResultRejectsMissingWinner(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())

	req := threeSetWin(f.pairA.ID)
	req.WinnerID = nil
	_, err := env.matches.SubmitMatchResult(context.Background(), f.match.ID, req)
	if !apperrors.HasCode(err, apperrors.CodeMissingWinner) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeMissingWinner)
	}
}

func TestSubmitMatchResultRejectsSharedPlayer(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())

	// players[0] plays for both sides.
	overlap := env.seed.Pair(f.competition.ID, 1, f.players[0], f.players[2])
	match := env.seed.Match(f.competition.ID, 1, f.pairA, overlap)

	_, err := env.matches.SubmitMatchResult(context.Background(), match.ID, threeSetWin(f.pairA.ID))
	if !apperrors.HasCode(err, apperrors.CodeInvalidPairs) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidPairs)
	}

	stored := env.loadMatch(t, match.ID)
	if stored.IsCompleted || stored.PointsCalculated {
		t.Fatalf("flags = (completed %v, calculated %v), want both false", stored.IsCompleted, stored.PointsCalculated)
	}
	if points := env.pointsByPlayer(t, match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}
}

func TestSubmitMatchResultRejectsPairAgainstItself(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	match := env.seed.Match(f.competition.ID, 1, f.pairA, f.pairA)

	_, err := env.matches.SubmitMatchResult(context.Background(), match.ID, threeSetWin(f.pairA.ID))
	if !apperrors.HasCode(err, apperrors.CodeInvalidPairs) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidPairs)
	}
	if points := env.pointsByPlayer(t, match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}
}

func TestSubmitMatchResultDeletedPair(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	if err := env.db.Delete(&models.Pair{}, f.pairB.ID).Error; err != nil {
		t.Fatalf("delete pair: %v", err)
	}

	_, err := env.matches.SubmitMatchResult(context.Background(), f.match.ID, threeSetWin(f.pairA.ID))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Metadata["pair_id"] != strconv.FormatUint(uint64(f.pairB.ID), 10) {
		t.Fatalf("err metadata = %+v, want pair_id %d", appErr, f.pairB.ID)
	}

	match := env.loadMatch(t, f.match.ID)
	if match.IsCompleted || match.PointsCalculated {
		t.Fatalf("flags = (completed %v, calculated %v), want both false", match.IsCompleted, match.PointsCalculated)
	}
	var rows int64
	if err := env.db.Model(&models.PlayerPoints{}).Count(&rows).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if rows != 0 {
		t.Fatalf("ledger rows = %d, want 0", rows)
	}
}

func TestRecalculateMatchDeletedPair(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}
	if err := env.db.Delete(&models.Pair{}, f.pairB.ID).Error; err != nil {
		t.Fatalf("delete pair: %v", err)
	}

	_, err := env.matches.RecalculateMatch(ctx, f.match.ID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
	if env.loadMatch(t, f.match.ID).PointsCalculated {
		t.Fatal("points_calculated = true, want false")
	}
	points := env.pointsByPlayer(t, f.match.ID)
	if _, ok := points[0]; ok {
		t.Fatal("ledger row written for player 0")
	}
	if len(points) != 4 {
		t.Fatalf("records = %d, want the 4 previous records kept", len(points))
	}
}

func TestSubmitMatchResultWithoutRules(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, nil)

	_, err := env.matches.SubmitMatchResult(context.Background(), f.match.ID, threeSetWin(f.pairA.ID))
	if !apperrors.HasCode(err, apperrors.CodeConfigNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeConfigNotFound)
	}

	match := env.loadMatch(t, f.match.ID)
	if !match.IsCompleted {
		t.Fatal("result should be saved even when scoring fails")
	}
	if match.PointsCalculated {
		t.Fatal("points_calculated = true, want false")
	}
	if points := env.pointsByPlayer(t, f.match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}
}

func TestSubmitMatchResultNotFound(t *testing.T) {
	env := newTestEnv(t, 1)

	_, err := env.matches.SubmitMatchResult(context.Background(), 404, threeSetWin(1))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestRecalculateMatchAppliesNewRules(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}
	if _, err := env.rules.Upsert(ctx, f.competition.ID, models.UpsertScoringRulesRequest{WinPoints: testutil.FloatPtr(20)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	match, err := env.matches.RecalculateMatch(ctx, f.match.ID)
	if err != nil {
		t.Fatalf("RecalculateMatch: %v", err)
	}
	if !match.PointsCalculated {
		t.Fatal("points_calculated = false after recalculation")
	}

	points := env.pointsByPlayer(t, f.match.ID)
	winner := points[f.players[0].ID]
	if winner.Points != 27 || !winner.IsRecalculated {
		t.Fatalf("winner record = (%v, recalculated %v), want (27, true)", winner.Points, winner.IsRecalculated)
	}
	if got := env.loadRoster(t, f.roster.ID).TotalPoints; got != 37 {
		t.Fatalf("roster total = %v, want 37", got)
	}
}

func TestRecalculateMatchWithoutResultClears(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())

	match, err := env.matches.RecalculateMatch(context.Background(), f.match.ID)
	if err != nil {
		t.Fatalf("RecalculateMatch: %v", err)
	}
	if match.PointsCalculated {
		t.Fatal("match without result should not be marked calculated")
	}
	if points := env.pointsByPlayer(t, f.match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}
}

func TestDeleteMatchRemovesPoints(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}
	if err := env.matches.DeleteMatch(ctx, f.match.ID); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}

	if _, err := env.matches.GetMatch(ctx, f.match.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("GetMatch after delete err = %v, want %s", err, apperrors.CodeNotFound)
	}
	if points := env.pointsByPlayer(t, f.match.ID); len(points) != 0 {
		t.Fatalf("records = %d, want 0", len(points))
	}

	roster := env.loadRoster(t, f.roster.ID)
	if roster.TotalPoints != 0 {
		t.Fatalf("roster total = %v, want 0", roster.TotalPoints)
	}
	if len(roster.WeeklyPoints) != 1 || roster.WeeklyPoints[0].Points != 0 {
		t.Fatalf("weekly rows = %+v, want one zeroed row", roster.WeeklyPoints)
	}
}

func TestGetMatchesFiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t, 1)
	f := env.doubles(t, defaultRulesRow())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		env.seed.Match(f.competition.ID, 2, f.pairA, f.pairB)
	}
	if _, err := env.matches.SubmitMatchResult(ctx, f.match.ID, threeSetWin(f.pairA.ID)); err != nil {
		t.Fatalf("SubmitMatchResult: %v", err)
	}

	page, err := env.matches.GetMatches(ctx, MatchFilters{CompetitionID: &f.competition.ID, Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("GetMatches: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 2 {
		t.Fatalf("page = (total %d, pages %d, len %d), want (3, 2, 2)", page.Total, page.TotalPages, len(page.Data))
	}
	if page.Data[0].Pair1.Player1.ID != f.players[0].ID {
		t.Fatal("pair players not preloaded")
	}

	completed := true
	done, err := env.matches.GetMatches(ctx, MatchFilters{IsCompleted: &completed, Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("GetMatches: %v", err)
	}
	if done.Total != 1 || done.Data[0].ID != f.match.ID {
		t.Fatalf("completed matches = %d, want only match %d", done.Total, f.match.ID)
	}
}
