package api

import (
	"time"

	"croupier/games"
	"croupier/models"
	"croupier/service"
)

// Wire representations. Internal numeric IDs stay internal for rounds and
// bets; their UUIDs are the public handle.

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Wallet   int64  `json:"wallet"`
	Bank     int64  `json:"bank"`
	Banned   bool   `json:"banned"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:       u.ID,
		Username: u.Username,
		Wallet:   u.Wallet,
		Bank:     u.Bank,
		Banned:   u.Banned,
	}
}

type roomView struct {
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	Game              games.Type `json:"game"`
	MinBet            int64      `json:"minBet"`
	MaxBet            int64      `json:"maxBet"`
	BettingSeconds    int        `json:"bettingSeconds"`
	LockBufferSeconds int        `json:"lockBufferSeconds"`
	RevealSeconds     int        `json:"revealSeconds"`
	CommissionFree    bool       `json:"commissionFree"`
	Enabled           bool       `json:"enabled"`
}

func newRoomView(r *models.Room) roomView {
	return roomView{
		Code:              r.Code,
		Name:              r.Name,
		Game:              r.Game,
		MinBet:            r.MinBet,
		MaxBet:            r.MaxBet,
		BettingSeconds:    r.BettingSeconds,
		LockBufferSeconds: r.LockBufferSeconds,
		RevealSeconds:     r.RevealSeconds,
		CommissionFree:    r.CommissionFree,
		Enabled:           r.Enabled,
	}
}

type roundView struct {
	UUID            string            `json:"uuid"`
	Day             string            `json:"day"`
	DaySeq          int               `json:"daySeq"`
	Phase           models.RoundPhase `json:"phase"`
	Outcome         *games.Outcome    `json:"outcome,omitempty"`
	StartedAt       time.Time         `json:"startedAt"`
	RevealStartedAt *time.Time        `json:"revealStartedAt,omitempty"`
	SettledAt       *time.Time        `json:"settledAt,omitempty"`
}

func newRoundView(r *models.Round) roundView {
	return roundView{
		UUID:            r.UUID.String(),
		Day:             r.Day,
		DaySeq:          r.DaySeq,
		Phase:           r.Phase,
		Outcome:         r.Outcome,
		StartedAt:       r.StartedAt,
		RevealStartedAt: r.RevealStartedAt,
		SettledAt:       r.SettledAt,
	}
}

type stateTimers struct {
	LockInSec int64 `json:"lockInSec"`
	EndInSec  int64 `json:"endInSec"`
}

type stateView struct {
	Room   roomView    `json:"room"`
	Round  *roundView  `json:"round,omitempty"`
	Timers stateTimers `json:"timers"`
}

func newStateView(s *service.RoomState) stateView {
	view := stateView{
		Room: newRoomView(s.Room),
		Timers: stateTimers{
			LockInSec: s.LockInSec,
			EndInSec:  s.EndInSec,
		},
	}
	if s.Round != nil {
		rv := newRoundView(s.Round)
		view.Round = &rv
	}
	return view
}

type betView struct {
	UUID      string        `json:"uuid"`
	Kind      games.BetKind `json:"kind"`
	Amount    int64         `json:"amount"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newBetView(b *models.Bet) betView {
	return betView{
		UUID:      b.UUID.String(),
		Kind:      b.Kind,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt,
	}
}

type receiptView struct {
	Bet        betView `json:"bet"`
	NewBalance int64   `json:"newBalance"`
}

func newReceiptView(r *models.BetReceipt) receiptView {
	return receiptView{
		Bet:        newBetView(r.Bet),
		NewBalance: r.NewBalance,
	}
}

type ledgerEntryView struct {
	ID            int64            `json:"id"`
	Type          models.EntryType `json:"type"`
	Partition     models.Partition `json:"partition"`
	Delta         int64            `json:"delta"`
	BalanceBefore int64            `json:"balanceBefore"`
	BalanceAfter  int64            `json:"balanceAfter"`
	Memo          string           `json:"memo,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func newLedgerEntryView(e *models.LedgerEntry) ledgerEntryView {
	return ledgerEntryView{
		ID:            e.ID,
		Type:          e.Type,
		Partition:     e.Partition,
		Delta:         e.Delta,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Memo:          e.Memo,
		CreatedAt:     e.CreatedAt,
	}
}
