package service

import "errors"

// Machine-readable rejection reasons surfaced to callers. The API layer maps
// these to wire error codes; everything else is an internal error.
var (
	// ErrInsufficientFunds rejects a debit that would take a balance
	// partition negative. Nothing is applied.
	ErrInsufficientFunds = errors.New("INSUFFICIENT_FUNDS")

	// ErrLocked rejects a bet observed at or after the round's lock
	// boundary, or against a round past the betting phase.
	ErrLocked = errors.New("LOCKED")

	// ErrBetOutOfRange rejects amounts outside the room's table limits.
	ErrBetOutOfRange = errors.New("BET_OUT_OF_RANGE")

	// ErrRoomClosed rejects bets against a disabled room.
	ErrRoomClosed = errors.New("ROOM_CLOSED")

	// ErrInvalidBet rejects a bet kind the room's game does not offer.
	ErrInvalidBet = errors.New("INVALID_BET")

	// ErrNotFound reports a missing user, room, round or bet.
	ErrNotFound = errors.New("NOT_FOUND")

	// ErrUserBanned rejects operations for banned accounts.
	ErrUserBanned = errors.New("USER_BANNED")
)
