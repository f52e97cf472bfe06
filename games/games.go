// Package games holds the pure game logic: outcome generation and payout
// evaluation for every supported game. Nothing in this package performs I/O;
// outcomes are deterministic given a *rand.Rand, and payout rules are pure
// functions from (bet kind, stake, outcome) to a credit amount.
package games

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Type identifies a supported game.
type Type string

const (
	TypeBaccarat Type = "baccarat"
	TypeRoulette Type = "roulette"
	TypeSicBo    Type = "sicbo"
	TypeLotto    Type = "lotto"
)

// Valid reports whether t is a known game type.
func (t Type) Valid() bool {
	switch t {
	case TypeBaccarat, TypeRoulette, TypeSicBo, TypeLotto:
		return true
	}
	return false
}

// BetKind is a game-specific wager identifier, e.g. "player", "red",
// "straight_17", "total_11" or "pick_3-7-12-25-31". Each game's payout rule
// validates its own kinds.
type BetKind string

// Outcome is the game-determining result drawn exactly once per round. Only
// the field matching Game is populated; the struct serialises to JSON for
// storage on the round row.
type Outcome struct {
	Game     Type             `json:"game"`
	Baccarat *BaccaratOutcome `json:"baccarat,omitempty"`
	Roulette *RouletteOutcome `json:"roulette,omitempty"`
	SicBo    *SicBoOutcome    `json:"sicbo,omitempty"`
	Lotto    *LottoOutcome    `json:"lotto,omitempty"`
}

// Draw produces a random outcome for the given game. It is called exactly
// once per round, by the round state machine at the transition out of the
// betting phase.
func Draw(game Type, rng *rand.Rand) (*Outcome, error) {
	switch game {
	case TypeBaccarat:
		return &Outcome{Game: game, Baccarat: drawBaccarat(rng)}, nil
	case TypeRoulette:
		return &Outcome{Game: game, Roulette: drawRoulette(rng)}, nil
	case TypeSicBo:
		return &Outcome{Game: game, SicBo: drawSicBo(rng)}, nil
	case TypeLotto:
		return &Outcome{Game: game, Lotto: drawLotto(rng)}, nil
	default:
		return nil, fmt.Errorf("unknown game type %q", game)
	}
}

// PayoutRule evaluates wagers for one game variant. Evaluate returns the
// TOTAL credit owed for the bet: stake plus winnings on a win, exactly the
// stake on a push, zero on a loss. Fractional multipliers always floor.
type PayoutRule interface {
	// ValidateKind rejects bet kinds the game does not offer.
	ValidateKind(kind BetKind) error

	// Evaluate maps a settled outcome to the credit owed for one bet.
	Evaluate(kind BetKind, amount int64, o *Outcome) (int64, error)
}

// RuleFor returns the payout rule for a game. commissionFree selects the
// no-commission baccarat variant (super six); it is ignored by other games.
func RuleFor(game Type, commissionFree bool) (PayoutRule, error) {
	switch game {
	case TypeBaccarat:
		return &BaccaratRule{CommissionFree: commissionFree}, nil
	case TypeRoulette:
		return RouletteRule{}, nil
	case TypeSicBo:
		return SicBoRule{}, nil
	case TypeLotto:
		return LottoRule{}, nil
	default:
		return nil, fmt.Errorf("unknown game type %q", game)
	}
}

// NewRand builds the RNG for a draw. With a seed override (admin-forced or
// test outcomes) the sequence is fully deterministic; otherwise the seed
// comes from the OS entropy source.
func NewRand(seedOverride *int64) *rand.Rand {
	if seedOverride != nil {
		return rand.New(rand.NewSource(*seedOverride))
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("failed to read entropy for draw seed: %v", err))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}
