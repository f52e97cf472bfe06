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

// settlementOverdueAfter is how far past its due time a round may run before
// CheckAdvance starts flagging it at error severity. Unsettled bets are a
// financial liability; a stuck round needs operator attention, never a
// silent skip.
const settlementOverdueAfter = 30 * time.Second

type roundService struct {
	uowFactory UnitOfWorkFactory
	loc        *time.Location
	now        func() time.Time
}

// NewRoundService creates the round state machine service. loc is the
// casino's timezone, used for the daily round-sequence reset.
func NewRoundService(uowFactory UnitOfWorkFactory, loc *time.Location) RoundService {
	return &roundService{
		uowFactory: uowFactory,
		loc:        loc,
		now:        time.Now,
	}
}

// CheckAdvance performs any transition the room's current round is due for.
// The whole check runs in one transaction under the room's advisory lock;
// the conditional phase updates make a second concurrent caller observe the
// already-advanced phase and no-op. On any failure the transaction aborts
// with the phase unchanged, so the next tick retries.
func (s *roundService) CheckAdvance(ctx context.Context, roomID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}

	if err := uow.RoundRepository().LockRoom(ctx, room.ID); err != nil {
		return fmt.Errorf("failed to lock room: %w", err)
	}

	round, err := uow.RoundRepository().GetOpenForRoom(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("failed to get open round: %w", err)
	}

	now := s.now()
	switch {
	case round == nil:
		// A disabled room finishes its current round but gets no new one.
		if !room.Enabled {
			return uow.Rollback()
		}
		if _, err := s.openRoundLocked(ctx, uow, room, now); err != nil {
			return err
		}

	case round.Phase == models.PhaseBetting:
		if now.Before(round.BettingEndsAt(room)) {
			return uow.Rollback()
		}
		if _, err := s.reveal(ctx, uow, room, round, now, nil); err != nil {
			return err
		}

	case round.Phase == models.PhaseRevealing:
		due := round.RevealEndsAt(room)
		if now.Before(due) {
			return uow.Rollback()
		}
		if overdue := now.Sub(due); overdue > settlementOverdueAfter {
			log.WithFields(log.Fields{
				"room":            room.Code,
				"round":           round.ID,
				"overdue_seconds": int(overdue.Seconds()),
			}).Error("Round settlement overdue, retrying")
		}
		if err := s.settle(ctx, uow, room, round, now); err != nil {
			return err
		}

	default:
		return uow.Rollback()
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// openRoundLocked creates the next betting-phase round for a room. Caller
// must hold the room's advisory lock.
func (s *roundService) openRoundLocked(ctx context.Context, uow UnitOfWork, room *models.Room, now time.Time) (*models.Round, error) {
	round := &models.Round{
		UUID:      uuid.New(),
		RoomID:    room.ID,
		Day:       models.DayOf(now, s.loc),
		Phase:     models.PhaseBetting,
		StartedAt: now,
	}
	if err := uow.RoundRepository().Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	uow.EventBus().Publish(events.RoundOpenedEvent{
		RoomID:  room.ID,
		RoundID: round.ID,
		Day:     round.Day,
		DaySeq:  round.DaySeq,
	})

	log.WithFields(log.Fields{
		"room":    room.Code,
		"round":   round.ID,
		"day":     round.Day,
		"day_seq": round.DaySeq,
	}).Info("Round opened")
	return round, nil
}

// reveal draws the outcome (or applies an admin override) and advances
// betting -> revealing. The conditional update makes the draw exactly-once:
// a loser finds the phase already moved and backs off without side effects.
func (s *roundService) reveal(ctx context.Context, uow UnitOfWork, room *models.Room, round *models.Round, now time.Time, override *games.Outcome) (bool, error) {
	outcome := override
	if outcome == nil {
		var err error
		outcome, err = games.Draw(room.Game, games.NewRand(room.SeedOverride))
		if err != nil {
			return false, fmt.Errorf("failed to draw outcome: %w", err)
		}
	}

	won, err := uow.RoundRepository().MarkRevealing(ctx, round.ID, outcome, now)
	if err != nil {
		return false, fmt.Errorf("failed to advance round to revealing: %w", err)
	}
	if !won {
		log.WithFields(log.Fields{"room": room.Code, "round": round.ID}).
			Debug("Lost reveal transition race, backing off")
		return false, nil
	}

	round.Phase = models.PhaseRevealing
	round.Outcome = outcome
	round.RevealStartedAt = &now

	uow.EventBus().Publish(events.RoundRevealedEvent{
		RoomID:  room.ID,
		RoundID: round.ID,
		Outcome: outcome,
	})

	log.WithFields(log.Fields{
		"room":  room.Code,
		"round": round.ID,
		"game":  room.Game,
	}).Info("Round outcome drawn")
	return true, nil
}

// settle computes payouts over the round's closed bet set and credits each
// winning user once. The conditional settled update runs first: the winner
// of that update is the unique settler and everything it applies commits
// atomically with the phase change; a loser rolls back having touched
// nothing.
func (s *roundService) settle(ctx context.Context, uow UnitOfWork, room *models.Room, round *models.Round, now time.Time) error {
	won, err := uow.RoundRepository().MarkSettled(ctx, round.ID, now)
	if err != nil {
		return fmt.Errorf("failed to advance round to settled: %w", err)
	}
	if !won {
		log.WithFields(log.Fields{"room": room.Code, "round": round.ID}).
			Debug("Lost settle transition race, backing off")
		return nil
	}

	rule, err := games.RuleFor(room.Game, room.CommissionFree)
	if err != nil {
		return err
	}

	bets, err := uow.BetRepository().GetByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to load bets for settlement: %w", err)
	}

	// One aggregated credit per user, not one per bet.
	credits := make(map[int64]int64)
	betCounts := make(map[int64]int)
	var totalStaked, totalPaid int64
	for _, bet := range bets {
		totalStaked += bet.Amount
		credit, err := rule.Evaluate(bet.Kind, bet.Amount, round.Outcome)
		if err != nil {
			return fmt.Errorf("failed to evaluate bet %d: %w", bet.ID, err)
		}
		if credit > 0 {
			credits[bet.UserID] += credit
			betCounts[bet.UserID]++
			totalPaid += credit
		}
	}

	for userID, credit := range credits {
		if _, err := applyBalanceChange(ctx, uow, ledgerChange{
			userID:    userID,
			partition: models.PartitionWallet,
			delta:     credit,
			entryType: models.EntryTypePayout,
			roundID:   &round.ID,
			metadata: map[string]any{
				"room":         room.Code,
				"day_seq":      round.DaySeq,
				"winning_bets": betCounts[userID],
			},
		}); err != nil {
			return fmt.Errorf("failed to credit payout for user %d: %w", userID, err)
		}
	}

	round.Phase = models.PhaseSettled
	round.PayoutSettled = true
	round.SettledAt = &now

	uow.EventBus().Publish(events.RoundSettledEvent{
		RoomID:      room.ID,
		RoundID:     round.ID,
		BetCount:    len(bets),
		TotalStaked: totalStaked,
		TotalPaid:   totalPaid,
	})

	log.WithFields(log.Fields{
		"room":         room.Code,
		"round":        round.ID,
		"bets":         len(bets),
		"total_staked": totalStaked,
		"total_paid":   totalPaid,
	}).Info("Round settled")

	// A settled round immediately yields a fresh one.
	if room.Enabled {
		if _, err := s.openRoundLocked(ctx, uow, room, now); err != nil {
			return err
		}
	}
	return nil
}

// OpenRound is the admin escape hatch for a room with no open round (for
// example after re-enabling it).
func (s *roundService) OpenRound(ctx context.Context, roomCode string) (*models.Round, error) {
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

	if err := uow.RoundRepository().LockRoom(ctx, room.ID); err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	existing, err := uow.RoundRepository().GetOpenForRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open round: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("room %q already has an open round", roomCode)
	}

	round, err := s.openRoundLocked(ctx, uow, room, s.now())
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return round, nil
}

// ForceSettle drives a round to settled right now through the same guarded
// transitions the scheduler uses. With an override the given outcome is
// recorded instead of a draw; a round already past betting keeps the
// outcome it has.
func (s *roundService) ForceSettle(ctx context.Context, roundUUID uuid.UUID, override *games.Outcome) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByUUID(ctx, roundUUID)
	if err != nil {
		return fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return fmt.Errorf("%w: round %s", ErrNotFound, roundUUID)
	}

	room, err := uow.RoomRepository().GetByID(ctx, round.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if err := uow.RoundRepository().LockRoom(ctx, room.ID); err != nil {
		return fmt.Errorf("failed to lock room: %w", err)
	}
	round, err = uow.RoundRepository().GetByID(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("failed to reload round: %w", err)
	}
	if round.IsSettled() {
		return nil // already terminal, nothing to force
	}

	now := s.now()
	if round.Phase == models.PhaseBetting {
		if _, err := s.reveal(ctx, uow, room, round, now, override); err != nil {
			return err
		}
	}
	if err := s.settle(ctx, uow, room, round, now); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"room":     room.Code,
		"round":    round.ID,
		"override": override != nil,
	}).Warn("Round force-settled by admin")
	return nil
}

func (s *roundService) GetRoomState(ctx context.Context, roomCode string) (*RoomState, error) {
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

	round, err := uow.RoundRepository().GetOpenForRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open round: %w", err)
	}

	state := &RoomState{Room: room, Round: round}
	if round != nil {
		now := s.now()
		if lockIn := round.LockAt(room).Sub(now); lockIn > 0 && round.Phase == models.PhaseBetting {
			state.LockInSec = int64(lockIn.Seconds())
		}
		var due time.Time
		switch round.Phase {
		case models.PhaseBetting:
			due = round.BettingEndsAt(room)
		case models.PhaseRevealing:
			due = round.RevealEndsAt(room)
		}
		if endIn := due.Sub(now); endIn > 0 {
			state.EndInSec = int64(endIn.Seconds())
		}
	}
	return state, nil
}

func (s *roundService) GetHistory(ctx context.Context, roomCode string, limit int) ([]*models.Round, error) {
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

	rounds, err := uow.RoundRepository().History(ctx, room.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get round history: %w", err)
	}
	return rounds, nil
}
