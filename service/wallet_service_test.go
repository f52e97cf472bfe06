package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"croupier/models"
)

type walletServiceFixture struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	userRepo   *MockUserRepository
	ledgerRepo *MockLedgerRepository
	service    WalletService
}

func newWalletServiceFixture() *walletServiceFixture {
	f := &walletServiceFixture{
		factory:    new(MockUnitOfWorkFactory),
		uow:        new(MockUnitOfWork),
		userRepo:   new(MockUserRepository),
		ledgerRepo: new(MockLedgerRepository),
	}
	f.uow.SetRepositories(f.userRepo, nil, nil, nil, f.ledgerRepo)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.service = NewWalletService(f.factory)
	return f
}

func TestWalletService_GetOrCreateUser(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	ctx := context.Background()

	t.Run("existing user is returned as is", func(t *testing.T) {
		f := newWalletServiceFixture()
		existing := &models.User{ID: 42, Username: "alice", Wallet: 500}
		f.userRepo.On("GetByUsername", ctx, "alice").Return(existing, nil)

		user, err := f.service.GetOrCreateUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, existing, user)
		f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creation writes the initial ledger entry", func(t *testing.T) {
		f := newWalletServiceFixture()
		f.uow.On("Commit").Return(nil)

		f.userRepo.On("GetByUsername", ctx, "bob").Return(nil, nil)
		f.userRepo.On("Create", ctx, "bob", mock.AnythingOfType("int64")).
			Return(&models.User{ID: 7, Username: "bob", Wallet: 100000}, nil)
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.UserID == 7 &&
				e.Type == models.EntryTypeInitial &&
				e.Partition == models.PartitionWallet &&
				e.BalanceBefore == 0 &&
				e.Delta == e.BalanceAfter
		})).Return(nil)

		user, err := f.service.GetOrCreateUser(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		f.ledgerRepo.AssertExpectations(t)
	})
}

func TestWalletService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("both legs in one transaction", func(t *testing.T) {
		f := newWalletServiceFixture()
		f.uow.On("Commit").Return(nil)

		f.userRepo.On("Debit", ctx, int64(42), models.PartitionWallet, int64(300)).Return(int64(700), nil)
		f.userRepo.On("Credit", ctx, int64(42), models.PartitionBank, int64(300)).Return(int64(800), nil)
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Type == models.EntryTypeTransferOut && e.Delta == -300 && e.Partition == models.PartitionWallet
		})).Return(nil).Once()
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Type == models.EntryTypeTransferIn && e.Delta == 300 && e.Partition == models.PartitionBank
		})).Return(nil).Once()
		f.userRepo.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, Wallet: 700, Bank: 800}, nil)

		user, err := f.service.Transfer(ctx, 42, models.PartitionWallet, models.PartitionBank, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(700), user.Wallet)
		assert.Equal(t, int64(800), user.Bank)
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("insufficient funds aborts before the credit leg", func(t *testing.T) {
		f := newWalletServiceFixture()
		f.userRepo.On("Debit", ctx, int64(42), models.PartitionWallet, int64(300)).
			Return(int64(0), ErrInsufficientFunds)

		_, err := f.service.Transfer(ctx, 42, models.PartitionWallet, models.PartitionBank, 300)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		f.userRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.uow.AssertNotCalled(t, "Commit")
	})

	t.Run("rejects same-partition and invalid transfers", func(t *testing.T) {
		f := newWalletServiceFixture()

		_, err := f.service.Transfer(ctx, 42, models.PartitionWallet, models.PartitionWallet, 100)
		assert.Error(t, err)

		_, err = f.service.Transfer(ctx, 42, models.Partition("vault"), models.PartitionBank, 100)
		assert.Error(t, err)

		_, err = f.service.Transfer(ctx, 42, models.PartitionWallet, models.PartitionBank, 0)
		assert.Error(t, err)
	})
}

func TestWalletService_AdminAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("negative delta debits", func(t *testing.T) {
		f := newWalletServiceFixture()
		f.uow.On("Commit").Return(nil)

		f.userRepo.On("Debit", ctx, int64(42), models.PartitionWallet, int64(250)).Return(int64(750), nil)
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Type == models.EntryTypeAdminAdjust &&
				e.Delta == -250 &&
				e.BalanceBefore == 1000 &&
				e.BalanceAfter == 750 &&
				e.Memo == "chargeback"
		})).Return(nil)
		f.userRepo.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, Wallet: 750}, nil)

		user, err := f.service.AdminAdjust(ctx, 42, models.PartitionWallet, -250, "chargeback")
		require.NoError(t, err)
		assert.Equal(t, int64(750), user.Wallet)
		f.ledgerRepo.AssertExpectations(t)
	})

	t.Run("positive delta credits", func(t *testing.T) {
		f := newWalletServiceFixture()
		f.uow.On("Commit").Return(nil)

		f.userRepo.On("Credit", ctx, int64(42), models.PartitionBank, int64(500)).Return(int64(1500), nil)
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Type == models.EntryTypeAdminAdjust && e.Delta == 500
		})).Return(nil)
		f.userRepo.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, Bank: 1500}, nil)

		_, err := f.service.AdminAdjust(ctx, 42, models.PartitionBank, 500, "goodwill")
		require.NoError(t, err)
	})

	t.Run("invalid partition", func(t *testing.T) {
		f := newWalletServiceFixture()
		_, err := f.service.AdminAdjust(ctx, 42, models.Partition("vault"), 100, "x")
		assert.Error(t, err)
	})
}

func TestRoomService_SetRoomConfig(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*MockRoomRepository, *MockUnitOfWork, RoomService) {
		factory := new(MockUnitOfWorkFactory)
		uow := new(MockUnitOfWork)
		roomRepo := new(MockRoomRepository)
		uow.SetRepositories(nil, roomRepo, nil, nil, nil)
		factory.On("Create").Return(uow)
		uow.On("Begin", mock.Anything).Return(nil)
		uow.On("Rollback").Return(nil)
		return roomRepo, uow, NewRoomService(factory)
	}

	t.Run("applies only the provided fields", func(t *testing.T) {
		roomRepo, uow, svc := newFixture()
		uow.On("Commit").Return(nil)

		roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)
		roomRepo.On("Update", ctx, mock.MatchedBy(func(r *models.Room) bool {
			return r.MinBet == 50 && r.MaxBet == 10000 && r.BettingSeconds == 60
		})).Return(nil)

		minBet := int64(50)
		room, err := svc.SetRoomConfig(ctx, "BAC-60", RoomConfigUpdate{MinBet: &minBet})
		require.NoError(t, err)
		assert.Equal(t, int64(50), room.MinBet)
		roomRepo.AssertExpectations(t)
	})

	t.Run("rejects a lock buffer covering the whole betting window", func(t *testing.T) {
		roomRepo, uow, svc := newFixture()
		roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)

		buffer := 60
		_, err := svc.SetRoomConfig(ctx, "BAC-60", RoomConfigUpdate{LockBufferSeconds: &buffer})
		assert.Error(t, err)
		uow.AssertNotCalled(t, "Commit")
	})

	t.Run("rejects inverted table limits", func(t *testing.T) {
		roomRepo, _, svc := newFixture()
		roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)

		maxBet := int64(5)
		_, err := svc.SetRoomConfig(ctx, "BAC-60", RoomConfigUpdate{MaxBet: &maxBet})
		assert.Error(t, err)
	})
}
