package scoring

import (
	"testing"

	"fantasy-doubles-api/packages/core/apperrors"
)

func floatPtr(v float64) *float64 { return &v }

func TestEffectiveRules(t *testing.T) {
	t.Run("nil fields take defaults", func(t *testing.T) {
		got := EffectiveRules(nil, nil, nil, nil)
		if got != DefaultRules() {
			t.Fatalf("EffectiveRules = %+v, want %+v", got, DefaultRules())
		}
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		got := EffectiveRules(floatPtr(12), nil, floatPtr(4), nil)
		want := Rules{WinPoints: 12, LossPoints: 5, SetWinPoints: 4, SetLossPoints: 1}
		if got != want {
			t.Fatalf("EffectiveRules = %+v, want %+v", got, want)
		}
	})

	t.Run("explicit zero is not replaced", func(t *testing.T) {
		got := EffectiveRules(nil, floatPtr(0), nil, floatPtr(0))
		if got.LossPoints != 0 || got.SetLossPoints != 0 {
			t.Fatalf("EffectiveRules = %+v, want zero loss points", got)
		}
	})
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("Validate(defaults) = %v", err)
	}

	err := Rules{WinPoints: 10, LossPoints: -1}.Validate()
	if !apperrors.HasCode(err, apperrors.CodeInvalidScoringRules) {
		t.Fatalf("Validate = %v, want %s", err, apperrors.CodeInvalidScoringRules)
	}
}
