package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"croupier/events"
	"croupier/games"
	"croupier/models"
)

type roundServiceFixture struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	userRepo   *MockUserRepository
	roomRepo   *MockRoomRepository
	roundRepo  *MockRoundRepository
	betRepo    *MockBetRepository
	ledgerRepo *MockLedgerRepository
	service    *roundService
}

func newRoundServiceFixture(now time.Time) *roundServiceFixture {
	f := &roundServiceFixture{
		factory:    new(MockUnitOfWorkFactory),
		uow:        new(MockUnitOfWork),
		userRepo:   new(MockUserRepository),
		roomRepo:   new(MockRoomRepository),
		roundRepo:  new(MockRoundRepository),
		betRepo:    new(MockBetRepository),
		ledgerRepo: new(MockLedgerRepository),
	}
	f.uow.SetRepositories(f.userRepo, f.roomRepo, f.roundRepo, f.betRepo, f.ledgerRepo)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.service = NewRoundService(f.factory, time.UTC).(*roundService)
	f.service.now = func() time.Time { return now }
	return f
}

func playerWinOutcome() *games.Outcome {
	return &games.Outcome{
		Game:     games.TypeBaccarat,
		Baccarat: &games.BaccaratOutcome{Winner: games.BaccaratWinnerPlayer, PlayerTotal: 7, BankerTotal: 4},
	}
}

func TestRoundService_CheckAdvance_OpensRound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newRoundServiceFixture(now)
	f.uow.On("Commit").Return(nil)

	room := baccaratRoom()
	f.roomRepo.On("GetByID", ctx, int64(1)).Return(room, nil)
	f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
	f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(nil, nil)
	f.roundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Round) bool {
		return r.RoomID == 1 &&
			r.Phase == models.PhaseBetting &&
			r.Day == "2026-03-01" &&
			r.StartedAt.Equal(now) &&
			r.UUID != uuid.Nil
	})).Return(nil)

	require.NoError(t, f.service.CheckAdvance(ctx, 1))

	published := f.uow.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeRoundOpened, published[0].Type())
	f.roundRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestRoundService_CheckAdvance_DisabledRoomGetsNoRound(t *testing.T) {
	ctx := context.Background()
	f := newRoundServiceFixture(time.Now())

	room := baccaratRoom()
	room.Enabled = false
	f.roomRepo.On("GetByID", ctx, int64(1)).Return(room, nil)
	f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
	f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(nil, nil)

	require.NoError(t, f.service.CheckAdvance(ctx, 1))
	f.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoundService_CheckAdvance_BettingNotDue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newRoundServiceFixture(start.Add(30 * time.Second))

	f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
	f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
	f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(bettingRound(start), nil)

	require.NoError(t, f.service.CheckAdvance(ctx, 1))
	f.roundRepo.AssertNotCalled(t, "MarkRevealing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestRoundService_CheckAdvance_Reveal(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(61 * time.Second)

	t.Run("draws and advances when betting is due", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		seed := int64(42)
		room := baccaratRoom()
		room.SeedOverride = &seed
		expected, err := games.Draw(room.Game, games.NewRand(&seed))
		require.NoError(t, err)

		f.roomRepo.On("GetByID", ctx, int64(1)).Return(room, nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(bettingRound(start), nil)
		f.roundRepo.On("MarkRevealing", ctx, int64(7), expected, now).Return(true, nil)

		require.NoError(t, f.service.CheckAdvance(ctx, 1))

		published := f.uow.PublishedEvents()
		require.Len(t, published, 1)
		revealed, ok := published[0].(events.RoundRevealedEvent)
		require.True(t, ok)
		assert.Equal(t, expected, revealed.Outcome)
		f.roundRepo.AssertExpectations(t)
	})

	t.Run("race loser applies nothing", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(bettingRound(start), nil)
		f.roundRepo.On("MarkRevealing", ctx, int64(7), mock.Anything, now).Return(false, nil)

		require.NoError(t, f.service.CheckAdvance(ctx, 1))
		assert.Empty(t, f.uow.PublishedEvents())
	})
}

func TestRoundService_CheckAdvance_Settle(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revealAt := start.Add(60 * time.Second)
	now := revealAt.Add(11 * time.Second)

	revealingRound := func() *models.Round {
		return &models.Round{
			ID:              7,
			UUID:            uuid.New(),
			RoomID:          1,
			Phase:           models.PhaseRevealing,
			Outcome:         playerWinOutcome(),
			StartedAt:       start,
			RevealStartedAt: &revealAt,
		}
	}

	t.Run("pays each user one aggregated credit", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(revealingRound(), nil)
		f.roundRepo.On("MarkSettled", ctx, int64(7), now).Return(true, nil)

		// User 42: player 100 (wins, credit 200) and tie 50 (loses).
		// User 43: banker 100 (loses). User 44: player 30 (wins, credit 60).
		f.betRepo.On("GetByRound", ctx, int64(7)).Return([]*models.Bet{
			{ID: 1, RoundID: 7, UserID: 42, Kind: games.BaccaratPlayer, Amount: 100},
			{ID: 2, RoundID: 7, UserID: 42, Kind: games.BaccaratTie, Amount: 50},
			{ID: 3, RoundID: 7, UserID: 43, Kind: games.BaccaratBanker, Amount: 100},
			{ID: 4, RoundID: 7, UserID: 44, Kind: games.BaccaratPlayer, Amount: 30},
		}, nil)

		f.userRepo.On("Credit", ctx, int64(42), models.PartitionWallet, int64(200)).Return(int64(1200), nil)
		f.userRepo.On("Credit", ctx, int64(44), models.PartitionWallet, int64(60)).Return(int64(560), nil)
		f.ledgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.Type == models.EntryTypePayout && e.RoundID != nil && *e.RoundID == 7
		})).Return(nil)

		// A settled round immediately yields the next one
		f.roundRepo.On("Create", ctx, mock.AnythingOfType("*models.Round")).Return(nil)

		require.NoError(t, f.service.CheckAdvance(ctx, 1))

		f.userRepo.AssertExpectations(t)
		f.userRepo.AssertNumberOfCalls(t, "Credit", 2)
		f.ledgerRepo.AssertNumberOfCalls(t, "Record", 2)

		var settled *events.RoundSettledEvent
		for _, e := range f.uow.PublishedEvents() {
			if ev, ok := e.(events.RoundSettledEvent); ok {
				settled = &ev
			}
		}
		require.NotNil(t, settled)
		assert.Equal(t, 4, settled.BetCount)
		assert.Equal(t, int64(280), settled.TotalStaked)
		assert.Equal(t, int64(260), settled.TotalPaid)
	})

	t.Run("race loser credits nothing", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(revealingRound(), nil)
		f.roundRepo.On("MarkSettled", ctx, int64(7), now).Return(false, nil)

		require.NoError(t, f.service.CheckAdvance(ctx, 1))

		f.betRepo.AssertNotCalled(t, "GetByRound", mock.Anything, mock.Anything)
		f.userRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("disabled room settles but opens no new round", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		room := baccaratRoom()
		room.Enabled = false
		f.roomRepo.On("GetByID", ctx, int64(1)).Return(room, nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(revealingRound(), nil)
		f.roundRepo.On("MarkSettled", ctx, int64(7), now).Return(true, nil)
		f.betRepo.On("GetByRound", ctx, int64(7)).Return([]*models.Bet{}, nil)

		require.NoError(t, f.service.CheckAdvance(ctx, 1))
		f.roundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRoundService_ForceSettle(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Second)
	roundUUID := uuid.New()

	t.Run("betting round with an override outcome", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.uow.On("Commit").Return(nil)

		round := bettingRound(start)
		round.UUID = roundUUID
		override := playerWinOutcome()

		f.roundRepo.On("GetByUUID", ctx, roundUUID).Return(round, nil)
		f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetByID", ctx, int64(7)).Return(round, nil)
		f.roundRepo.On("MarkRevealing", ctx, int64(7), override, now).Return(true, nil)
		f.roundRepo.On("MarkSettled", ctx, int64(7), now).Return(true, nil)
		f.betRepo.On("GetByRound", ctx, int64(7)).Return([]*models.Bet{}, nil)
		f.roundRepo.On("Create", ctx, mock.AnythingOfType("*models.Round")).Return(nil)

		require.NoError(t, f.service.ForceSettle(ctx, roundUUID, override))
		f.roundRepo.AssertExpectations(t)
	})

	t.Run("already settled is a no-op", func(t *testing.T) {
		f := newRoundServiceFixture(now)

		round := bettingRound(start)
		round.UUID = roundUUID
		settled := *round
		settled.Phase = models.PhaseSettled

		f.roundRepo.On("GetByUUID", ctx, roundUUID).Return(round, nil)
		f.roomRepo.On("GetByID", ctx, int64(1)).Return(baccaratRoom(), nil)
		f.roundRepo.On("LockRoom", ctx, int64(1)).Return(nil)
		f.roundRepo.On("GetByID", ctx, int64(7)).Return(&settled, nil)

		require.NoError(t, f.service.ForceSettle(ctx, roundUUID, nil))
		f.roundRepo.AssertNotCalled(t, "MarkSettled", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown round", func(t *testing.T) {
		f := newRoundServiceFixture(now)
		f.roundRepo.On("GetByUUID", ctx, roundUUID).Return(nil, nil)

		err := f.service.ForceSettle(ctx, roundUUID, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRoundService_GetRoomState(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("betting phase timers", func(t *testing.T) {
		f := newRoundServiceFixture(start.Add(20 * time.Second))

		f.roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(bettingRound(start), nil)

		state, err := f.service.GetRoomState(ctx, "BAC-60")
		require.NoError(t, err)
		assert.Equal(t, int64(35), state.LockInSec) // lock at +55s
		assert.Equal(t, int64(40), state.EndInSec)  // betting ends at +60s
	})

	t.Run("locked but not yet revealed", func(t *testing.T) {
		f := newRoundServiceFixture(start.Add(57 * time.Second))

		f.roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(bettingRound(start), nil)

		state, err := f.service.GetRoomState(ctx, "BAC-60")
		require.NoError(t, err)
		assert.Equal(t, int64(0), state.LockInSec)
		assert.Equal(t, int64(3), state.EndInSec)
	})

	t.Run("between rounds", func(t *testing.T) {
		f := newRoundServiceFixture(start)

		f.roomRepo.On("GetByCode", ctx, "BAC-60").Return(baccaratRoom(), nil)
		f.roundRepo.On("GetOpenForRoom", ctx, int64(1)).Return(nil, nil)

		state, err := f.service.GetRoomState(ctx, "BAC-60")
		require.NoError(t, err)
		assert.Nil(t, state.Round)
		assert.Equal(t, int64(0), state.LockInSec)
		assert.Equal(t, int64(0), state.EndInSec)
	})
}
