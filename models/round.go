package models

import (
	"time"

	"github.com/google/uuid"

	"croupier/games"
)

// RoundPhase is the persisted stage of a round. Transitions are monotonic:
// betting -> revealing -> settled, with settled terminal.
type RoundPhase string

const (
	PhaseBetting   RoundPhase = "betting"
	PhaseRevealing RoundPhase = "revealing"
	PhaseSettled   RoundPhase = "settled"
)

// Round is one timed cycle of a room. At most one non-settled round exists
// per room at any time (enforced by a partial unique index). The outcome is
// written exactly once, at the betting -> revealing transition, and is
// immutable afterwards.
type Round struct {
	ID              int64          `db:"id"`
	UUID            uuid.UUID      `db:"uuid"`
	RoomID          int64          `db:"room_id"`
	Day             string         `db:"day"` // YYYY-MM-DD in the casino's timezone
	DaySeq          int            `db:"day_seq"`
	Phase           RoundPhase     `db:"phase"`
	Outcome         *games.Outcome `db:"outcome"`
	StartedAt       time.Time      `db:"started_at"`
	RevealStartedAt *time.Time     `db:"reveal_started_at"`
	SettledAt       *time.Time     `db:"settled_at"`
	PayoutSettled   bool           `db:"payout_settled"`
	CreatedAt       time.Time      `db:"created_at"`
}

// IsSettled returns true once the round reached its terminal phase.
func (r *Round) IsSettled() bool {
	return r.Phase == PhaseSettled
}

// LockAt returns the instant bet intake closes: the end of the betting
// window minus the room's lock buffer. This is the single source of truth
// for "is it locked yet"; bet intake, status queries and the scheduler all
// consult it rather than recomputing their own timestamp arithmetic.
func (r *Round) LockAt(room *Room) time.Time {
	return r.StartedAt.Add(room.BettingDuration() - room.LockBuffer())
}

// BettingEndsAt returns when the betting phase is due to advance.
func (r *Round) BettingEndsAt(room *Room) time.Time {
	return r.StartedAt.Add(room.BettingDuration())
}

// RevealEndsAt returns when the reveal phase is due to settle. Zero time if
// the reveal has not started.
func (r *Round) RevealEndsAt(room *Room) time.Time {
	if r.RevealStartedAt == nil {
		return time.Time{}
	}
	return r.RevealStartedAt.Add(room.RevealDuration())
}

// AcceptsBetsAt reports whether a bet observed at now may still join this
// round. Both the phase and the wall clock are checked so a bet racing the
// scheduler's own transition is rejected on either ground.
func (r *Round) AcceptsBetsAt(room *Room, now time.Time) bool {
	return r.Phase == PhaseBetting && now.Before(r.LockAt(room))
}

// DayOf formats t as a round day string in the given location.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
