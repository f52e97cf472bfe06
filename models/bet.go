package models

import (
	"time"

	"github.com/google/uuid"

	"croupier/games"
)

// Bet is a single wager against a round. Bets are immutable once created;
// the only way to undo one is the refund-before-lock path, which deletes the
// row and re-credits the stake while the round is still taking bets.
type Bet struct {
	ID            int64         `db:"id"`
	UUID          uuid.UUID     `db:"uuid"`
	RoundID       int64         `db:"round_id"`
	UserID        int64         `db:"user_id"`
	Kind          games.BetKind `db:"kind"`
	Amount        int64         `db:"amount"`
	LedgerEntryID *int64        `db:"ledger_entry_id"`
	CreatedAt     time.Time     `db:"created_at"`
}

// BetReceipt is returned to the caller after a successful placement.
type BetReceipt struct {
	Bet        *Bet
	NewBalance int64
}
