package games

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Roulette bet kinds. Straight bets encode the number: "straight_17".
const (
	RouletteRed    BetKind = "red"
	RouletteBlack  BetKind = "black"
	RouletteOdd    BetKind = "odd"
	RouletteEven   BetKind = "even"
	RouletteLow    BetKind = "low"  // 1-18
	RouletteHigh   BetKind = "high" // 19-36
	RouletteDozen1 BetKind = "dozen_1"
	RouletteDozen2 BetKind = "dozen_2"
	RouletteDozen3 BetKind = "dozen_3"
	RouletteCol1   BetKind = "column_1"
	RouletteCol2   BetKind = "column_2"
	RouletteCol3   BetKind = "column_3"
)

// RouletteOutcome is a single European wheel spin.
type RouletteOutcome struct {
	Number int  `json:"number"` // 0-36
	Red    bool `json:"red"`
}

var rouletteReds = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func drawRoulette(rng *rand.Rand) *RouletteOutcome {
	n := rng.Intn(37)
	return &RouletteOutcome{Number: n, Red: rouletteReds[n]}
}

// RouletteRule evaluates European roulette wagers. Zero wins straight bets
// on zero only; every outside bet loses on zero (no push).
type RouletteRule struct{}

// rouletteStraight parses a "straight_N" kind; ok is false otherwise.
func rouletteStraight(kind BetKind) (int, bool) {
	s, found := strings.CutPrefix(string(kind), "straight_")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 36 {
		return 0, false
	}
	return n, true
}

func (RouletteRule) ValidateKind(kind BetKind) error {
	if _, ok := rouletteStraight(kind); ok {
		return nil
	}
	switch kind {
	case RouletteRed, RouletteBlack, RouletteOdd, RouletteEven,
		RouletteLow, RouletteHigh,
		RouletteDozen1, RouletteDozen2, RouletteDozen3,
		RouletteCol1, RouletteCol2, RouletteCol3:
		return nil
	}
	return fmt.Errorf("unknown roulette bet kind %q", kind)
}

// Evaluate returns the total credit: straight pays 35:1 (36x total),
// dozens and columns 2:1 (3x), even-money bets 1:1 (2x).
func (RouletteRule) Evaluate(kind BetKind, amount int64, o *Outcome) (int64, error) {
	if o == nil || o.Roulette == nil {
		return 0, fmt.Errorf("roulette outcome missing")
	}
	n := o.Roulette.Number

	if target, ok := rouletteStraight(kind); ok {
		if n == target {
			return amount * 36, nil
		}
		return 0, nil
	}

	if n == 0 {
		return 0, nil // zero beats all outside bets
	}

	win := false
	multiple := int64(2)
	switch kind {
	case RouletteRed:
		win = o.Roulette.Red
	case RouletteBlack:
		win = !o.Roulette.Red
	case RouletteOdd:
		win = n%2 == 1
	case RouletteEven:
		win = n%2 == 0
	case RouletteLow:
		win = n <= 18
	case RouletteHigh:
		win = n >= 19
	case RouletteDozen1:
		win, multiple = n <= 12, 3
	case RouletteDozen2:
		win, multiple = n >= 13 && n <= 24, 3
	case RouletteDozen3:
		win, multiple = n >= 25, 3
	case RouletteCol1:
		win, multiple = n%3 == 1, 3
	case RouletteCol2:
		win, multiple = n%3 == 2, 3
	case RouletteCol3:
		win, multiple = n%3 == 0, 3
	default:
		return 0, fmt.Errorf("unknown roulette bet kind %q", kind)
	}

	if win {
		return amount * multiple, nil
	}
	return 0, nil
}
