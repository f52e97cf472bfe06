package games

import (
	"fmt"
	"math/rand"
)

// Card is a single playing card. Rank runs 1 (ace) through 13 (king),
// Suit 0 through 3 (spades, hearts, diamonds, clubs).
type Card struct {
	Rank int `json:"rank"`
	Suit int `json:"suit"`
}

// BaccaratValue returns the card's point value in baccarat: aces one,
// tens and courts zero.
func (c Card) BaccaratValue() int {
	if c.Rank >= 10 {
		return 0
	}
	return c.Rank
}

var suitSymbols = [4]string{"♠", "♥", "♦", "♣"}
var rankSymbols = [14]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

func (c Card) String() string {
	if c.Rank < 1 || c.Rank > 13 || c.Suit < 0 || c.Suit > 3 {
		return fmt.Sprintf("?%d/%d", c.Rank, c.Suit)
	}
	return suitSymbols[c.Suit] + rankSymbols[c.Rank]
}

// newShoe builds a shuffled shoe of the given number of 52-card decks.
func newShoe(decks int, rng *rand.Rand) []Card {
	shoe := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for suit := 0; suit < 4; suit++ {
			for rank := 1; rank <= 13; rank++ {
				shoe = append(shoe, Card{Rank: rank, Suit: suit})
			}
		}
	}
	rng.Shuffle(len(shoe), func(i, j int) {
		shoe[i], shoe[j] = shoe[j], shoe[i]
	})
	return shoe
}
