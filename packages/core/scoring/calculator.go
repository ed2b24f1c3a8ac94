package scoring

// Breakdown is the points a player earns from one match.
type Breakdown struct {
	WinPoints     float64 `json:"win_points"`
	LossPoints    float64 `json:"loss_points"`
	SetWinPoints  float64 `json:"set_win_points"`
	SetLossPoints float64 `json:"set_loss_points"`
	Total         float64 `json:"total"`
}

// CalculatePoints applies the scoring rules to one side's outcome.
func CalculatePoints(won bool, setsWon, setsLost int, rules Rules) Breakdown {
	var b Breakdown
	if won {
		b.WinPoints = rules.WinPoints
	} else {
		b.LossPoints = rules.LossPoints
	}
	b.SetWinPoints = float64(setsWon) * rules.SetWinPoints
	b.SetLossPoints = float64(setsLost) * rules.SetLossPoints
	b.Total = b.WinPoints + b.LossPoints + b.SetWinPoints + b.SetLossPoints
	return b
}

// PairBreakdowns returns the breakdown shared by both players of pair A and of pair B.
// Individual contribution inside a pair is not distinguished.
func PairBreakdowns(o Outcome, rules Rules) (Breakdown, Breakdown) {
	setsA, setsB := o.SetsWon()
	pairA := CalculatePoints(o.PairAWon(), setsA, setsB, rules)
	pairB := CalculatePoints(!o.PairAWon(), setsB, setsA, rules)
	return pairA, pairB
}
