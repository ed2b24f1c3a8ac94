package models

import (
	"fmt"
	"strings"
)

const (
	AnomalyMatchesWithoutResults      = "matches_without_results"
	AnomalyMatchesWithoutPoints       = "matches_without_points"
	AnomalyMatchesWithoutPlayerPoints = "matches_without_player_points"
	AnomalyInconsistentFantasyPoints  = "inconsistent_fantasy_points"
)

const (
	FixRecalculateMatchPoints   = "recalculate_match_points"
	FixRecalculateFantasyPoints = "recalculate_fantasy_points"
	FixBoth                     = "both"
)

// AnomalyFilter scopes detection and repair. Nil fields are not applied.
type AnomalyFilter struct {
	CompetitionID *uint `json:"competition_id,omitempty" form:"competition_id"`
	Matchweek     *int  `json:"matchweek,omitempty" form:"matchweek"`
}

// AnomalyItem identifies one inconsistent entity.
type AnomalyItem struct {
	MatchID       uint    `json:"match_id,omitempty"`
	RosterID      uint    `json:"roster_id,omitempty"`
	CompetitionID uint    `json:"competition_id"`
	Matchweek     int     `json:"matchweek,omitempty"`
	Stored        float64 `json:"stored,omitempty"`
	Expected      float64 `json:"expected,omitempty"`
}

type AnomalyReport struct {
	Type    string        `json:"type"`
	Count   int           `json:"count"`
	Details []AnomalyItem `json:"details"`
}

type FixErrorsRequest struct {
	FixType       string `json:"fix_type" binding:"required"`
	CompetitionID *uint  `json:"competition_id,omitempty"`
	Matchweek     *int   `json:"matchweek,omitempty"`
}

// FixResult summarises a repair run.
type FixResult struct {
	FixType      string   `json:"fix_type"`
	FixesApplied int      `json:"fixes_applied"`
	Failures     int      `json:"failures"`
	Fixes        []string `json:"fixes"`
	Errors       []string `json:"errors,omitempty"`
}

// AddFix records a successful repair.
func (r *FixResult) AddFix(format string, args ...any) {
	r.FixesApplied++
	r.Fixes = append(r.Fixes, fmt.Sprintf(format, args...))
}

// AddError records a failed repair. The run continues.
func (r *FixResult) AddError(format string, args ...any) {
	r.Failures++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a one-line description of the run.
func (r *FixResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d fixes applied, %d failures", r.FixType, r.FixesApplied, r.Failures)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, " (first error: %s)", r.Errors[0])
	}
	return b.String()
}

type Dashboard struct {
	TotalCompetitions int64 `json:"total_competitions"`
	ActivePlayers     int64 `json:"active_players"`
	TotalRosters      int64 `json:"total_rosters"`
	TotalMatches      int64 `json:"total_matches"`
	CompletedMatches  int64 `json:"completed_matches"`
	CalculatedMatches int64 `json:"calculated_matches"`
}

// SquadView is a roster's state for one matchweek with the ledger records behind it.
type SquadView struct {
	RosterID       uint           `json:"roster_id"`
	UserID         uint           `json:"user_id"`
	Name           string         `json:"name"`
	TotalPoints    float64        `json:"total_points"`
	Matchweek      int            `json:"matchweek"`
	WeeklyPoints   float64        `json:"weekly_points"`
	StartersPoints float64        `json:"starters_points"`
	BenchPoints    float64        `json:"bench_points"`
	Players        []RosterPlayer `json:"players"`
	Records        []PlayerPoints `json:"records"`
}
