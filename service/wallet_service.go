package service

import (
	"context"
	"fmt"

	"croupier/config"
	"croupier/models"
)

type walletService struct {
	uowFactory UnitOfWorkFactory
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory) WalletService {
	return &walletService{uowFactory: uowFactory}
}

func (s *walletService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *walletService) GetOrCreateUser(ctx context.Context, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	initial := config.Get().InitialBalance
	user, err = uow.UserRepository().Create(ctx, username, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The creation credit itself is the first ledger entry, so the
	// reconciliation sum starts out equal to the balance.
	if initial > 0 {
		entry := &models.LedgerEntry{
			UserID:        user.ID,
			Type:          models.EntryTypeInitial,
			Partition:     models.PartitionWallet,
			Delta:         initial,
			BalanceBefore: 0,
			BalanceAfter:  initial,
			Metadata:      map[string]any{"username": username},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// Transfer moves funds between two partitions of one user. Both legs and
// their two ledger entries live in a single transaction, so a failed credit
// rolls the debit back.
func (s *walletService) Transfer(ctx context.Context, userID int64, from, to models.Partition, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if !from.Valid() || !to.Valid() || from == to {
		return nil, fmt.Errorf("invalid transfer partitions %q -> %q", from, to)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	meta := map[string]any{"from": string(from), "to": string(to)}
	if _, err := applyBalanceChange(ctx, uow, ledgerChange{
		userID:    userID,
		partition: from,
		delta:     -amount,
		entryType: models.EntryTypeTransferOut,
		metadata:  meta,
	}); err != nil {
		return nil, err
	}
	if _, err := applyBalanceChange(ctx, uow, ledgerChange{
		userID:    userID,
		partition: to,
		delta:     amount,
		entryType: models.EntryTypeTransferIn,
		metadata:  meta,
	}); err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *walletService) AdminAdjust(ctx context.Context, userID int64, partition models.Partition, delta int64, memo string) (*models.User, error) {
	if !partition.Valid() {
		return nil, fmt.Errorf("invalid partition %q", partition)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := applyBalanceChange(ctx, uow, ledgerChange{
		userID:    userID,
		partition: partition,
		delta:     delta,
		entryType: models.EntryTypeAdminAdjust,
		memo:      memo,
	}); err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *walletService) GetLedger(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}
