package scoring

import (
	"fmt"

	"fantasy-doubles-api/packages/core/apperrors"
)

const (
	DefaultWinPoints     = 10.0
	DefaultLossPoints    = 5.0
	DefaultSetWinPoints  = 3.0
	DefaultSetLossPoints = 1.0
)

// Rules is the effective scoring configuration of a competition.
type Rules struct {
	WinPoints     float64 `json:"win_points"`
	LossPoints    float64 `json:"loss_points"`
	SetWinPoints  float64 `json:"set_win_points"`
	SetLossPoints float64 `json:"set_loss_points"`
}

// DefaultRules returns the rules used when a competition leaves every field unset.
func DefaultRules() Rules {
	return Rules{
		WinPoints:     DefaultWinPoints,
		LossPoints:    DefaultLossPoints,
		SetWinPoints:  DefaultSetWinPoints,
		SetLossPoints: DefaultSetLossPoints,
	}
}

// EffectiveRules fills nil fields with their defaults. An explicit zero is kept.
func EffectiveRules(win, loss, setWin, setLoss *float64) Rules {
	rules := DefaultRules()
	if win != nil {
		rules.WinPoints = *win
	}
	if loss != nil {
		rules.LossPoints = *loss
	}
	if setWin != nil {
		rules.SetWinPoints = *setWin
	}
	if setLoss != nil {
		rules.SetLossPoints = *setLoss
	}
	return rules
}

// Validate rejects negative point values.
func (r Rules) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"win_points", r.WinPoints},
		{"loss_points", r.LossPoints},
		{"set_win_points", r.SetWinPoints},
		{"set_loss_points", r.SetLossPoints},
	}
	for _, f := range fields {
		if f.value < 0 {
			return apperrors.WithMetadata(
				apperrors.CodeInvalidScoringRules,
				fmt.Sprintf("%s must not be negative", f.name),
				map[string]string{"field": f.name},
			)
		}
	}
	return nil
}
