package games

import (
	"fmt"
	"math/rand"
)

// Baccarat bet kinds.
const (
	BaccaratPlayer      BetKind = "player"
	BaccaratBanker      BetKind = "banker"
	BaccaratTie         BetKind = "tie"
	BaccaratPlayerPair  BetKind = "player_pair"
	BaccaratBankerPair  BetKind = "banker_pair"
	BaccaratAnyPair     BetKind = "any_pair"
	BaccaratPerfectPair BetKind = "perfect_pair"
)

const baccaratShoeDecks = 8

// BaccaratWinner names the main result of a baccarat hand.
type BaccaratWinner string

const (
	BaccaratWinnerPlayer BaccaratWinner = "player"
	BaccaratWinnerBanker BaccaratWinner = "banker"
	BaccaratWinnerTie    BaccaratWinner = "tie"
)

// BaccaratOutcome is a fully dealt baccarat hand. The pair flags are derived
// from the first two cards of each hand and settle independently of the
// main result.
type BaccaratOutcome struct {
	PlayerCards []Card         `json:"playerCards"`
	BankerCards []Card         `json:"bankerCards"`
	PlayerTotal int            `json:"playerTotal"`
	BankerTotal int            `json:"bankerTotal"`
	Winner      BaccaratWinner `json:"winner"`
	PlayerPair  bool           `json:"playerPair"`
	BankerPair  bool           `json:"bankerPair"`
	PerfectPair bool           `json:"perfectPair"`
}

// bankerDrawTable is the banker's third-card decision table, indexed by the
// banker's two-card total (0-7) and the value of the player's third card
// (0-9). It applies only when the player drew; with no player third card the
// banker draws on 0-5 like the player. Totals 8-9 are naturals and never
// reach this table.
var bankerDrawTable = [8][10]bool{
	//                       player third card value
	//        0      1      2      3      4      5      6      7      8      9
	0: {true, true, true, true, true, true, true, true, true, true},
	1: {true, true, true, true, true, true, true, true, true, true},
	2: {true, true, true, true, true, true, true, true, true, true},
	3: {true, true, true, true, true, true, true, true, false, true},
	4: {false, false, true, true, true, true, true, true, false, false},
	5: {false, false, false, false, true, true, true, true, false, false},
	6: {false, false, false, false, false, false, true, true, false, false},
	7: {false, false, false, false, false, false, false, false, false, false},
}

// bankerDraws decides the banker's third card. playerThird is nil when the
// player stood on two cards.
func bankerDraws(bankerTotal int, playerThird *int) bool {
	if bankerTotal >= 8 {
		return false
	}
	if playerThird == nil {
		return bankerTotal <= 5
	}
	return bankerDrawTable[bankerTotal][*playerThird]
}

func handTotal(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.BaccaratValue()
	}
	return total % 10
}

func isPair(cards []Card) bool {
	return len(cards) >= 2 && cards[0].Rank == cards[1].Rank
}

func isPerfectPair(cards []Card) bool {
	return len(cards) >= 2 && cards[0] == cards[1]
}

// drawBaccarat deals one hand from a fresh shuffled shoe, applying the full
// tableau: player draws on 0-5 and stands on 6-7, naturals (8-9) end the
// hand, banker follows the decision table above.
func drawBaccarat(rng *rand.Rand) *BaccaratOutcome {
	shoe := newShoe(baccaratShoeDecks, rng)
	next := 0
	deal := func() Card {
		c := shoe[next]
		next++
		return c
	}

	player := []Card{deal(), deal()}
	banker := []Card{deal(), deal()}
	playerTotal := handTotal(player)
	bankerTotal := handTotal(banker)

	natural := playerTotal >= 8 || bankerTotal >= 8
	if !natural {
		var playerThird *int
		if playerTotal <= 5 {
			c := deal()
			player = append(player, c)
			v := c.BaccaratValue()
			playerThird = &v
			playerTotal = handTotal(player)
		}
		if bankerDraws(bankerTotal, playerThird) {
			banker = append(banker, deal())
			bankerTotal = handTotal(banker)
		}
	}

	winner := BaccaratWinnerTie
	switch {
	case playerTotal > bankerTotal:
		winner = BaccaratWinnerPlayer
	case bankerTotal > playerTotal:
		winner = BaccaratWinnerBanker
	}

	return &BaccaratOutcome{
		PlayerCards: player,
		BankerCards: banker,
		PlayerTotal: playerTotal,
		BankerTotal: bankerTotal,
		Winner:      winner,
		PlayerPair:  isPair(player),
		BankerPair:  isPair(banker),
		PerfectPair: isPerfectPair(player) || isPerfectPair(banker),
	}
}

// BaccaratRule evaluates baccarat wagers. With CommissionFree set, banker
// wins pay even money except on a winning total of six, which pays half the
// stake (super six); otherwise banker wins pay 19:20.
type BaccaratRule struct {
	CommissionFree bool
}

func (r *BaccaratRule) ValidateKind(kind BetKind) error {
	switch kind {
	case BaccaratPlayer, BaccaratBanker, BaccaratTie,
		BaccaratPlayerPair, BaccaratBankerPair, BaccaratAnyPair, BaccaratPerfectPair:
		return nil
	}
	return fmt.Errorf("unknown baccarat bet kind %q", kind)
}

// Evaluate returns the total credit for one bet: stake plus winnings on a
// win, the bare stake on a push (player/banker bets when the hand ties),
// zero on a loss. The two fractional multipliers (19:20 commission and the
// super-six half-pay) floor.
func (r *BaccaratRule) Evaluate(kind BetKind, amount int64, o *Outcome) (int64, error) {
	if o == nil || o.Baccarat == nil {
		return 0, fmt.Errorf("baccarat outcome missing")
	}
	b := o.Baccarat

	switch kind {
	case BaccaratPlayer:
		switch b.Winner {
		case BaccaratWinnerPlayer:
			return amount * 2, nil
		case BaccaratWinnerTie:
			return amount, nil // push
		}
		return 0, nil

	case BaccaratBanker:
		switch b.Winner {
		case BaccaratWinnerBanker:
			if r.CommissionFree {
				if b.BankerTotal == 6 {
					return amount + amount/2, nil // super six: half pay
				}
				return amount * 2, nil
			}
			return amount + amount*95/100, nil // 19:20 commission
		case BaccaratWinnerTie:
			return amount, nil // push
		}
		return 0, nil

	case BaccaratTie:
		if b.Winner == BaccaratWinnerTie {
			return amount * 9, nil // 8:1
		}
		return 0, nil

	case BaccaratPlayerPair:
		if b.PlayerPair {
			return amount * 12, nil // 11:1
		}
		return 0, nil

	case BaccaratBankerPair:
		if b.BankerPair {
			return amount * 12, nil // 11:1
		}
		return 0, nil

	case BaccaratAnyPair:
		if b.PlayerPair || b.BankerPair {
			return amount * 6, nil // 5:1
		}
		return 0, nil

	case BaccaratPerfectPair:
		if b.PerfectPair {
			return amount * 26, nil // 25:1
		}
		return 0, nil
	}

	return 0, fmt.Errorf("unknown baccarat bet kind %q", kind)
}
