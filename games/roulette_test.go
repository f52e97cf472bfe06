package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rouletteOutcome(n int) *Outcome {
	return &Outcome{
		Game:     TypeRoulette,
		Roulette: &RouletteOutcome{Number: n, Red: rouletteReds[n]},
	}
}

func TestRouletteRule_ValidateKind(t *testing.T) {
	rule := RouletteRule{}

	valid := []BetKind{
		"straight_0", "straight_17", "straight_36",
		RouletteRed, RouletteBlack, RouletteOdd, RouletteEven,
		RouletteLow, RouletteHigh,
		RouletteDozen1, RouletteDozen2, RouletteDozen3,
		RouletteCol1, RouletteCol2, RouletteCol3,
	}
	for _, kind := range valid {
		assert.NoError(t, rule.ValidateKind(kind), "kind %s", kind)
	}

	invalid := []BetKind{"straight_37", "straight_-1", "straight_x", "straight_", "split_1_2", "player"}
	for _, kind := range invalid {
		assert.Error(t, rule.ValidateKind(kind), "kind %s", kind)
	}
}

func TestRouletteRule_Evaluate(t *testing.T) {
	rule := RouletteRule{}

	eval := func(t *testing.T, kind BetKind, n int) int64 {
		t.Helper()
		credit, err := rule.Evaluate(kind, 10, rouletteOutcome(n))
		require.NoError(t, err)
		return credit
	}

	t.Run("straight pays 35 to 1", func(t *testing.T) {
		assert.Equal(t, int64(360), eval(t, "straight_17", 17))
		assert.Equal(t, int64(0), eval(t, "straight_17", 18))
		assert.Equal(t, int64(360), eval(t, "straight_0", 0))
	})

	t.Run("even money bets", func(t *testing.T) {
		assert.Equal(t, int64(20), eval(t, RouletteRed, 1))
		assert.Equal(t, int64(0), eval(t, RouletteRed, 2))
		assert.Equal(t, int64(20), eval(t, RouletteBlack, 2))
		assert.Equal(t, int64(20), eval(t, RouletteOdd, 17))
		assert.Equal(t, int64(20), eval(t, RouletteEven, 18))
		assert.Equal(t, int64(20), eval(t, RouletteLow, 18))
		assert.Equal(t, int64(0), eval(t, RouletteLow, 19))
		assert.Equal(t, int64(20), eval(t, RouletteHigh, 19))
	})

	t.Run("zero beats every outside bet", func(t *testing.T) {
		outside := []BetKind{
			RouletteRed, RouletteBlack, RouletteOdd, RouletteEven,
			RouletteLow, RouletteHigh,
			RouletteDozen1, RouletteDozen2, RouletteDozen3,
			RouletteCol1, RouletteCol2, RouletteCol3,
		}
		for _, kind := range outside {
			assert.Equal(t, int64(0), eval(t, kind, 0), "kind %s", kind)
		}
	})

	t.Run("dozens pay 2 to 1", func(t *testing.T) {
		assert.Equal(t, int64(30), eval(t, RouletteDozen1, 12))
		assert.Equal(t, int64(30), eval(t, RouletteDozen2, 13))
		assert.Equal(t, int64(30), eval(t, RouletteDozen3, 25))
		assert.Equal(t, int64(0), eval(t, RouletteDozen1, 13))
	})

	t.Run("columns pay 2 to 1", func(t *testing.T) {
		assert.Equal(t, int64(30), eval(t, RouletteCol1, 1))
		assert.Equal(t, int64(30), eval(t, RouletteCol2, 35))
		assert.Equal(t, int64(30), eval(t, RouletteCol3, 36))
		assert.Equal(t, int64(0), eval(t, RouletteCol3, 35))
	})
}

func TestDrawRoulette(t *testing.T) {
	t.Run("red flag matches the wheel layout", func(t *testing.T) {
		for seed := int64(0); seed < 200; seed++ {
			s := seed
			o := drawRoulette(NewRand(&s))
			require.GreaterOrEqual(t, o.Number, 0)
			require.LessOrEqual(t, o.Number, 36)
			assert.Equal(t, rouletteReds[o.Number], o.Red)
		}
	})
}
