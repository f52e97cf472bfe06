package service

import (
	"context"
	"fmt"

	"croupier/events"
	"croupier/models"
)

// ledgerChange describes one balance mutation to apply inside a unit of
// work. Delta is signed: negative debits the partition, positive credits it.
type ledgerChange struct {
	userID    int64
	partition models.Partition
	delta     int64
	entryType models.EntryType
	roundID   *int64
	betID     *int64
	metadata  map[string]any
	memo      string
}

// applyBalanceChange is the single entry point for all balance mutations:
// it moves the partition and appends the matching ledger entry in the
// caller's transaction, then queues a BalanceChangeEvent for publication on
// commit. The mutation and the entry commit or roll back together, which is
// what keeps the reconciliation invariant true.
func applyBalanceChange(ctx context.Context, uow UnitOfWork, c ledgerChange) (*models.LedgerEntry, error) {
	if c.delta == 0 {
		return nil, fmt.Errorf("ledger change delta must be non-zero")
	}

	var newBalance int64
	var err error
	if c.delta < 0 {
		newBalance, err = uow.UserRepository().Debit(ctx, c.userID, c.partition, -c.delta)
	} else {
		newBalance, err = uow.UserRepository().Credit(ctx, c.userID, c.partition, c.delta)
	}
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		UserID:        c.userID,
		Type:          c.entryType,
		Partition:     c.partition,
		Delta:         c.delta,
		BalanceBefore: newBalance - c.delta,
		BalanceAfter:  newBalance,
		RoundID:       c.roundID,
		BetID:         c.betID,
		Metadata:      c.metadata,
		Memo:          c.memo,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       c.userID,
		Partition:    c.partition,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		EntryType:    c.entryType,
		ChangeAmount: c.delta,
	})

	return entry, nil
}
