package scoring

import (
	"fmt"
	"strconv"

	"fantasy-doubles-api/packages/core/apperrors"
)

// MaxSets is the number of sets a match can have.
const MaxSets = 3

// SetScore holds the games won by each side in one set.
type SetScore struct {
	PairA int `json:"pair1_score"`
	PairB int `json:"pair2_score"`
}

// MatchResult is the raw result of a doubles match as submitted.
// Sets that were not played are left at 0-0.
type MatchResult struct {
	PairA        uint
	PairB        uint
	PairAPlayers [2]uint
	PairBPlayers [2]uint
	Winner       *uint
	Sets         [MaxSets]SetScore
}

// Outcome is a validated match result. It can only be built by Normalize.
type Outcome struct {
	pairA    uint
	pairB    uint
	winner   uint
	setsWonA int
	setsWonB int
}

// PairA returns the ID of the first pair.
func (o Outcome) PairA() uint {
	return o.pairA
}

// PairB returns the ID of the second pair.
func (o Outcome) PairB() uint {
	return o.pairB
}

// Winner returns the ID of the winning pair.
func (o Outcome) Winner() uint {
	return o.winner
}

// PairAWon reports whether the first pair won the match.
func (o Outcome) PairAWon() bool {
	return o.winner == o.pairA
}

// SetsWon returns the decided sets won by pair A and pair B.
func (o Outcome) SetsWon() (int, int) {
	return o.setsWonA, o.setsWonB
}

// Normalize validates a result and derives the set tallies of both sides.
func Normalize(result MatchResult) (Outcome, error) {
	if err := ValidateScores(result.Sets); err != nil {
		return Outcome{}, err
	}
	if err := ValidatePairs(result); err != nil {
		return Outcome{}, err
	}
	if err := ValidateWinner(result.PairA, result.PairB, result.Winner); err != nil {
		return Outcome{}, err
	}

	a, b := SetsWon(result.Sets)
	return Outcome{
		pairA:    result.PairA,
		pairB:    result.PairB,
		winner:   *result.Winner,
		setsWonA: a,
		setsWonB: b,
	}, nil
}

// ValidatePairs checks that two different pairs meet and that the match
// has four distinct, non-zero players.
func ValidatePairs(result MatchResult) error {
	if result.PairA == 0 || result.PairA == result.PairB {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidPairs,
			"a match needs two different pairs",
			map[string]string{"pair_id": strconv.FormatUint(uint64(result.PairA), 10)},
		)
	}

	seen := make(map[uint]struct{}, 4)
	players := [4]uint{result.PairAPlayers[0], result.PairAPlayers[1], result.PairBPlayers[0], result.PairBPlayers[1]}
	for _, id := range players {
		if id == 0 {
			return apperrors.New(apperrors.CodeInvalidPairs, "every pair needs two players")
		}
		if _, ok := seen[id]; ok {
			return apperrors.WithMetadata(
				apperrors.CodeInvalidPairs,
				"a player cannot appear twice in a match",
				map[string]string{"player_id": strconv.FormatUint(uint64(id), 10)},
			)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateWinner checks that winner is set and is one of the two competing pairs.
func ValidateWinner(pairA, pairB uint, winner *uint) error {
	if winner == nil || *winner == 0 {
		return apperrors.New(apperrors.CodeMissingWinner, "winner is required")
	}
	if *winner != pairA && *winner != pairB {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidWinner,
			"winner must be one of the competing pairs",
			map[string]string{"winner_id": strconv.FormatUint(uint64(*winner), 10)},
		)
	}
	return nil
}

// ValidateScores rejects negative set scores.
func ValidateScores(sets [MaxSets]SetScore) error {
	for i, set := range sets {
		if set.PairA < 0 || set.PairB < 0 {
			return apperrors.WithMetadata(
				apperrors.CodeInvalidScores,
				fmt.Sprintf("set %d has a negative score", i+1),
				map[string]string{"set": strconv.Itoa(i + 1)},
			)
		}
	}
	return nil
}

// SetsWon counts the sets each side won with a strictly higher score.
// Tied sets, including an unplayed 0-0 set, count for neither side.
func SetsWon(sets [MaxSets]SetScore) (int, int) {
	var a, b int
	for _, set := range sets {
		switch {
		case set.PairA > set.PairB:
			a++
		case set.PairB > set.PairA:
			b++
		}
	}
	return a, b
}
