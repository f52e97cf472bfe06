package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lottoOutcome(nums ...int) *Outcome {
	return &Outcome{Game: TypeLotto, Lotto: &LottoOutcome{Numbers: nums}}
}

func TestLottoRule_ValidateKind(t *testing.T) {
	rule := LottoRule{}

	assert.NoError(t, rule.ValidateKind("pick_3-7-12-25-31"))
	assert.NoError(t, rule.ValidateKind("pick_36-1-2-3-4"))

	invalid := []BetKind{
		"pick_1-2-3-4",        // too few
		"pick_1-2-3-4-5-6",    // too many
		"pick_1-2-3-4-4",      // duplicate
		"pick_0-2-3-4-5",      // below range
		"pick_1-2-3-4-37",     // above range
		"pick_a-2-3-4-5",      // not a number
		"lucky_1-2-3-4-5",     // wrong prefix
	}
	for _, kind := range invalid {
		assert.Error(t, rule.ValidateKind(kind), "kind %s", kind)
	}
}

func TestLottoRule_Evaluate(t *testing.T) {
	rule := LottoRule{}
	drawn := lottoOutcome(3, 7, 12, 25, 31)

	cases := []struct {
		kind   BetKind
		credit int64
	}{
		{"pick_3-7-12-25-31", 100000}, // 5 matches
		{"pick_3-7-12-25-36", 3000},   // 4 matches
		{"pick_3-7-12-1-2", 200},      // 3 matches
		{"pick_3-7-1-2-4", 20},        // 2 matches
		{"pick_3-1-2-4-5", 0},         // 1 match
		{"pick_1-2-4-5-6", 0},         // 0 matches
	}
	for _, tc := range cases {
		credit, err := rule.Evaluate(tc.kind, 10, drawn)
		require.NoError(t, err, "kind %s", tc.kind)
		assert.Equal(t, tc.credit, credit, "kind %s", tc.kind)
	}

	t.Run("order of picks is irrelevant", func(t *testing.T) {
		credit, err := rule.Evaluate("pick_31-25-12-7-3", 10, drawn)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), credit)
	})
}

func TestDrawLotto(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		s := seed
		o := drawLotto(NewRand(&s))
		require.Len(t, o.Numbers, lottoDrawCount)
		for i, n := range o.Numbers {
			require.GreaterOrEqual(t, n, 1)
			require.LessOrEqual(t, n, lottoMaxNumber)
			if i > 0 {
				// ascending implies distinct
				require.Greater(t, n, o.Numbers[i-1])
			}
		}
	}
}
