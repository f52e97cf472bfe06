package games

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Sic-bo bet kinds. Parameterised kinds encode their number:
// "triple_4", "total_11", "single_6".
const (
	SicBoBig       BetKind = "big"   // total 11-17, loses on any triple
	SicBoSmall     BetKind = "small" // total 4-10, loses on any triple
	SicBoAnyTriple BetKind = "any_triple"
)

// SicBoOutcome is one roll of three dice.
type SicBoOutcome struct {
	Dice  [3]int `json:"dice"`
	Total int    `json:"total"`
}

// Triple reports whether all three dice match.
func (s *SicBoOutcome) Triple() bool {
	return s.Dice[0] == s.Dice[1] && s.Dice[1] == s.Dice[2]
}

func drawSicBo(rng *rand.Rand) *SicBoOutcome {
	var o SicBoOutcome
	for i := range o.Dice {
		o.Dice[i] = rng.Intn(6) + 1
		o.Total += o.Dice[i]
	}
	return &o
}

// sicBoTotalOdds maps a total-points bet to its win multiple (winnings,
// excluding stake), per the standard sic-bo table.
var sicBoTotalOdds = map[int]int64{
	4: 60, 5: 30, 6: 18, 7: 12, 8: 8,
	9: 6, 10: 6, 11: 6, 12: 6,
	13: 8, 14: 12, 15: 18, 16: 30, 17: 60,
}

// SicBoRule evaluates sic-bo wagers.
type SicBoRule struct{}

func sicBoParam(kind BetKind, prefix string, min, max int) (int, bool) {
	s, found := strings.CutPrefix(string(kind), prefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

func (SicBoRule) ValidateKind(kind BetKind) error {
	switch kind {
	case SicBoBig, SicBoSmall, SicBoAnyTriple:
		return nil
	}
	if _, ok := sicBoParam(kind, "triple_", 1, 6); ok {
		return nil
	}
	if _, ok := sicBoParam(kind, "total_", 4, 17); ok {
		return nil
	}
	if _, ok := sicBoParam(kind, "single_", 1, 6); ok {
		return nil
	}
	return fmt.Errorf("unknown sic-bo bet kind %q", kind)
}

// Evaluate returns the total credit. Big/small pay even money but lose to
// any triple; a specific triple pays 180:1, any triple 30:1; totals pay per
// sicBoTotalOdds; single-die bets pay 1:1, 2:1 or 3:1 by occurrence count.
func (SicBoRule) Evaluate(kind BetKind, amount int64, o *Outcome) (int64, error) {
	if o == nil || o.SicBo == nil {
		return 0, fmt.Errorf("sic-bo outcome missing")
	}
	s := o.SicBo

	switch kind {
	case SicBoBig:
		if !s.Triple() && s.Total >= 11 {
			return amount * 2, nil
		}
		return 0, nil
	case SicBoSmall:
		if !s.Triple() && s.Total <= 10 {
			return amount * 2, nil
		}
		return 0, nil
	case SicBoAnyTriple:
		if s.Triple() {
			return amount * 31, nil
		}
		return 0, nil
	}

	if n, ok := sicBoParam(kind, "triple_", 1, 6); ok {
		if s.Triple() && s.Dice[0] == n {
			return amount * 181, nil
		}
		return 0, nil
	}

	if n, ok := sicBoParam(kind, "total_", 4, 17); ok {
		if s.Total == n {
			return amount * (sicBoTotalOdds[n] + 1), nil
		}
		return 0, nil
	}

	if n, ok := sicBoParam(kind, "single_", 1, 6); ok {
		hits := int64(0)
		for _, d := range s.Dice {
			if d == n {
				hits++
			}
		}
		if hits > 0 {
			return amount * (hits + 1), nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("unknown sic-bo bet kind %q", kind)
}
