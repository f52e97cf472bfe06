package games

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

const (
	lottoDrawCount = 5
	lottoMaxNumber = 36
)

// LottoOutcome is one draw of five distinct numbers from 1-36, stored
// ascending.
type LottoOutcome struct {
	Numbers []int `json:"numbers"`
}

func drawLotto(rng *rand.Rand) *LottoOutcome {
	perm := rng.Perm(lottoMaxNumber)
	nums := make([]int, lottoDrawCount)
	for i := range nums {
		nums[i] = perm[i] + 1
	}
	sort.Ints(nums)
	return &LottoOutcome{Numbers: nums}
}

// lottoMatchCredit maps a match count to the total credit multiple.
var lottoMatchCredit = map[int]int64{
	5: 10000,
	4: 300,
	3: 20,
	2: 2,
}

// LottoRule evaluates pick-five wagers of the form "pick_3-7-12-25-31"
// (five distinct numbers 1-36, any order).
type LottoRule struct{}

// parseLottoPicks extracts and validates the five picked numbers.
func parseLottoPicks(kind BetKind) ([]int, error) {
	s, found := strings.CutPrefix(string(kind), "pick_")
	if !found {
		return nil, fmt.Errorf("unknown lotto bet kind %q", kind)
	}
	parts := strings.Split(s, "-")
	if len(parts) != lottoDrawCount {
		return nil, fmt.Errorf("lotto bet must pick exactly %d numbers", lottoDrawCount)
	}
	seen := make(map[int]bool, lottoDrawCount)
	picks := make([]int, 0, lottoDrawCount)
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > lottoMaxNumber {
			return nil, fmt.Errorf("lotto pick %q out of range 1-%d", p, lottoMaxNumber)
		}
		if seen[n] {
			return nil, fmt.Errorf("duplicate lotto pick %d", n)
		}
		seen[n] = true
		picks = append(picks, n)
	}
	return picks, nil
}

func (LottoRule) ValidateKind(kind BetKind) error {
	_, err := parseLottoPicks(kind)
	return err
}

// Evaluate pays by match count: five matches 10000x, four 300x, three 20x,
// two 2x, fewer nothing.
func (LottoRule) Evaluate(kind BetKind, amount int64, o *Outcome) (int64, error) {
	if o == nil || o.Lotto == nil {
		return 0, fmt.Errorf("lotto outcome missing")
	}
	picks, err := parseLottoPicks(kind)
	if err != nil {
		return 0, err
	}

	drawn := make(map[int]bool, len(o.Lotto.Numbers))
	for _, n := range o.Lotto.Numbers {
		drawn[n] = true
	}
	matches := 0
	for _, p := range picks {
		if drawn[p] {
			matches++
		}
	}
	return amount * lottoMatchCredit[matches], nil
}
