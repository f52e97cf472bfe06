package models

import (
	"time"

	"croupier/games"
)

// Room is a configured game table: which game it runs, its table limits and
// its fixed phase durations. Configuration is read fresh at every transition
// so admin changes take effect on the next round without a restart.
type Room struct {
	ID                int64      `db:"id"`
	Code              string     `db:"code"`
	Name              string     `db:"name"`
	Game              games.Type `db:"game"`
	MinBet            int64      `db:"min_bet"`
	MaxBet            int64      `db:"max_bet"`
	BettingSeconds    int        `db:"betting_seconds"`
	LockBufferSeconds int        `db:"lock_buffer_seconds"`
	RevealSeconds     int        `db:"reveal_seconds"`
	// CommissionFree switches baccarat banker payouts to the no-commission
	// variant where a banker win on a total of six pays half (super six).
	CommissionFree bool   `db:"commission_free"`
	SeedOverride   *int64 `db:"seed_override"`
	Enabled        bool   `db:"enabled"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// BettingDuration returns the length of the betting window.
func (r *Room) BettingDuration() time.Duration {
	return time.Duration(r.BettingSeconds) * time.Second
}

// LockBuffer returns how long before the betting window ends intake closes.
func (r *Room) LockBuffer() time.Duration {
	return time.Duration(r.LockBufferSeconds) * time.Second
}

// RevealDuration returns the length of the reveal window.
func (r *Room) RevealDuration() time.Duration {
	return time.Duration(r.RevealSeconds) * time.Second
}
