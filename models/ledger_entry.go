package models

import (
	"time"
)

// EntryType represents the kind of balance change a ledger entry records.
type EntryType string

const (
	EntryTypeInitial     EntryType = "initial"
	EntryTypeBetPlaced   EntryType = "bet_placed"
	EntryTypeBetRefund   EntryType = "bet_refund"
	EntryTypePayout      EntryType = "payout"
	EntryTypeTransferIn  EntryType = "transfer_in"
	EntryTypeTransferOut EntryType = "transfer_out"
	EntryTypeAdminAdjust EntryType = "admin_adjust"
)

// LedgerEntry is the append-only record of a single balance change. Entries
// are never mutated or deleted; for every user and partition the sum of
// deltas must equal the current balance (the reconciliation invariant).
type LedgerEntry struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	Type          EntryType      `db:"entry_type"`
	Partition     Partition      `db:"partition"`
	Delta         int64          `db:"delta"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	RoundID       *int64         `db:"round_id"`
	BetID         *int64         `db:"bet_id"`
	Metadata      map[string]any `db:"metadata"`
	Memo          string         `db:"memo"`
	CreatedAt     time.Time      `db:"created_at"`
}
