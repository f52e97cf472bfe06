package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"croupier/events"
	"croupier/games"
	"croupier/models"
)

type betService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewBetService creates a new bet intake service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{uowFactory: uowFactory, now: time.Now}
}

// PlaceBet validates and records a wager against the room's open round. The
// phase and lock boundary are re-checked inside the transaction, after the
// per-room advisory lock is held, so a bet racing the scheduler's own
// transition cannot slip in after the outcome draw.
func (s *betService) PlaceBet(ctx context.Context, userID int64, roomCode string, kind games.BetKind, amount int64) (*models.BetReceipt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrBetOutOfRange)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByCode(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %q", ErrNotFound, roomCode)
	}
	if !room.Enabled {
		return nil, ErrRoomClosed
	}
	if amount < room.MinBet || amount > room.MaxBet {
		return nil, fmt.Errorf("%w: amount %d outside [%d, %d]", ErrBetOutOfRange, amount, room.MinBet, room.MaxBet)
	}

	rule, err := games.RuleFor(room.Game, room.CommissionFree)
	if err != nil {
		return nil, err
	}
	if err := rule.ValidateKind(kind); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBet, err)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if user.Banned {
		return nil, ErrUserBanned
	}

	// Serialise against the room's phase transitions, then re-read the
	// round so the phase and clock check happen at transaction time.
	if err := uow.RoundRepository().LockRoom(ctx, room.ID); err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	round, err := uow.RoundRepository().GetOpenForRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open round: %w", err)
	}
	if round == nil || !round.AcceptsBetsAt(room, s.now()) {
		return nil, ErrLocked
	}

	entry, err := applyBalanceChange(ctx, uow, ledgerChange{
		userID:    userID,
		partition: models.PartitionWallet,
		delta:     -amount,
		entryType: models.EntryTypeBetPlaced,
		roundID:   &round.ID,
		metadata: map[string]any{
			"room": room.Code,
			"kind": string(kind),
		},
	})
	if err != nil {
		return nil, err
	}

	bet := &models.Bet{
		UUID:          uuid.New(),
		RoundID:       round.ID,
		UserID:        userID,
		Kind:          kind,
		Amount:        amount,
		LedgerEntryID: &entry.ID,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		UserID:  userID,
		RoundID: round.ID,
		BetID:   bet.ID,
		Kind:    kind,
		Amount:  amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"user":   userID,
		"room":   room.Code,
		"round":  round.ID,
		"kind":   kind,
		"amount": amount,
	}).Info("Bet placed")

	return &models.BetReceipt{Bet: bet, NewBalance: entry.BalanceAfter}, nil
}

// RefundBet deletes a bet and re-credits the stake. Only allowed while the
// round is still taking bets; once the lock boundary passes, the bet set is
// closed and rides to settlement.
func (s *betService) RefundBet(ctx context.Context, userID int64, betUUID uuid.UUID) (*models.BetReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByUUID(ctx, betUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil || bet.UserID != userID {
		return nil, fmt.Errorf("%w: bet %s", ErrNotFound, betUUID)
	}

	round, err := uow.RoundRepository().GetByID(ctx, bet.RoundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	room, err := uow.RoomRepository().GetByID(ctx, round.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if err := uow.RoundRepository().LockRoom(ctx, room.ID); err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	// Re-read under the lock: the scheduler may have advanced the phase
	// between the first read and the lock acquisition.
	round, err = uow.RoundRepository().GetByID(ctx, bet.RoundID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload round: %w", err)
	}
	if !round.AcceptsBetsAt(room, s.now()) {
		return nil, ErrLocked
	}

	if err := uow.BetRepository().Delete(ctx, bet.ID); err != nil {
		return nil, fmt.Errorf("failed to delete bet: %w", err)
	}

	entry, err := applyBalanceChange(ctx, uow, ledgerChange{
		userID:    userID,
		partition: models.PartitionWallet,
		delta:     bet.Amount,
		entryType: models.EntryTypeBetRefund,
		roundID:   &bet.RoundID,
		betID:     &bet.ID,
		metadata:  map[string]any{"kind": string(bet.Kind)},
	})
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BetRefundedEvent{
		UserID:  userID,
		RoundID: bet.RoundID,
		BetID:   bet.ID,
		Amount:  bet.Amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"user":   userID,
		"round":  bet.RoundID,
		"bet":    bet.ID,
		"amount": bet.Amount,
	}).Info("Bet refunded")

	return &models.BetReceipt{Bet: bet, NewBalance: entry.BalanceAfter}, nil
}

func (s *betService) GetUserBets(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bets: %w", err)
	}
	return bets, nil
}
