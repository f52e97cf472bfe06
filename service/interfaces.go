package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"croupier/events"
	"croupier/games"
	"croupier/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the initial wallet balance
	Create(ctx context.Context, username string, initialWallet int64) (*models.User, error)

	// Credit adds to a balance partition atomically and returns the
	// resulting balance
	Credit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error)

	// Debit subtracts from a balance partition atomically and returns the
	// resulting balance. Returns ErrInsufficientFunds when the partition
	// would go negative; nothing is applied in that case.
	Debit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error)
}

// RoomRepository defines the interface for room configuration access
type RoomRepository interface {
	GetByID(ctx context.Context, roomID int64) (*models.Room, error)
	GetByCode(ctx context.Context, code string) (*models.Room, error)

	// GetEnabled returns all rooms the scheduler should drive
	GetEnabled(ctx context.Context) ([]*models.Room, error)
	GetAll(ctx context.Context) ([]*models.Room, error)

	// Update persists admin configuration changes
	Update(ctx context.Context, room *models.Room) error
}

// RoundRepository defines the interface for round data access
type RoundRepository interface {
	// LockRoom takes the per-room advisory lock for the duration of the
	// current transaction, serialising phase transitions across processes
	LockRoom(ctx context.Context, roomID int64) error

	// GetOpenForRoom returns the room's non-settled round, or nil
	GetOpenForRoom(ctx context.Context, roomID int64) (*models.Round, error)

	GetByID(ctx context.Context, roundID int64) (*models.Round, error)
	GetByUUID(ctx context.Context, roundUUID uuid.UUID) (*models.Round, error)

	// Create inserts a fresh betting-phase round, assigning the next
	// day-scoped sequence number
	Create(ctx context.Context, round *models.Round) error

	// MarkRevealing advances betting -> revealing and writes the outcome.
	// Returns false without error when another transition already won.
	MarkRevealing(ctx context.Context, roundID int64, outcome *games.Outcome, revealStartedAt time.Time) (bool, error)

	// MarkSettled advances revealing -> settled and sets the payout flag.
	// Returns false without error when another transition already won.
	MarkSettled(ctx context.Context, roundID int64, settledAt time.Time) (bool, error)

	// History returns the most recently settled rounds, newest first
	History(ctx context.Context, roomID int64, limit int) ([]*models.Round, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByUUID(ctx context.Context, betUUID uuid.UUID) (*models.Bet, error)

	// GetByRound returns every bet in the round, the settlement input set
	GetByRound(ctx context.Context, roundID int64) ([]*models.Bet, error)

	// Delete removes a bet; only the refund-before-lock path uses this
	Delete(ctx context.Context, betID int64) error

	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
}

// LedgerRepository defines the interface for the append-only ledger
type LedgerRepository interface {
	// Record appends one entry; always called in the same transaction as
	// the balance mutation it describes
	Record(ctx context.Context, entry *models.LedgerEntry) error

	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)

	// SumDeltas returns the reconciliation sum for one user partition
	SumDeltas(ctx context.Context, userID int64, partition models.Partition) (int64, error)
}

// EventPublisher publishes events onto the unit of work's transactional bus
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents one database transaction with its bound repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	RoomRepository() RoomRepository
	RoundRepository() RoundRepository
	BetRepository() BetRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// RoomState is the public view of a room's current round and timers.
type RoomState struct {
	Room      *models.Room
	Round     *models.Round
	LockInSec int64 // seconds until bet intake closes, 0 when locked
	EndInSec  int64 // seconds until the current phase is due to advance
}

// RoomConfigUpdate carries admin changes to a room; nil fields are left as is.
type RoomConfigUpdate struct {
	Name              *string
	MinBet            *int64
	MaxBet            *int64
	BettingSeconds    *int
	LockBufferSeconds *int
	RevealSeconds     *int
	CommissionFree    *bool
	Enabled           *bool
}

// WalletService manages user balances and the ledger that mirrors them
type WalletService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// GetOrCreateUser retrieves an existing user or creates one with the
	// configured initial balance
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)

	// Transfer moves funds between two partitions of one user
	Transfer(ctx context.Context, userID int64, from, to models.Partition, amount int64) (*models.User, error)

	// AdminAdjust applies a signed manual correction with a memo
	AdminAdjust(ctx context.Context, userID int64, partition models.Partition, delta int64, memo string) (*models.User, error)

	GetLedger(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// BetService accepts and refunds wagers against open rounds
type BetService interface {
	PlaceBet(ctx context.Context, userID int64, roomCode string, kind games.BetKind, amount int64) (*models.BetReceipt, error)

	// RefundBet deletes a bet and re-credits the stake, allowed only while
	// the round still accepts bets
	RefundBet(ctx context.Context, userID int64, betUUID uuid.UUID) (*models.BetReceipt, error)

	GetUserBets(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
}

// RoundService owns the per-room round lifecycle
type RoundService interface {
	// CheckAdvance inspects the room's current round against the wall
	// clock and performs any due transition. Safe to call repeatedly;
	// concurrent callers race on the advisory lock and conditional
	// updates, and losers no-op.
	CheckAdvance(ctx context.Context, roomID int64) error

	// OpenRound opens a fresh round for a room with none (admin escape hatch)
	OpenRound(ctx context.Context, roomCode string) (*models.Round, error)

	// ForceSettle drives a round to settled immediately through the same
	// guarded transition path, optionally with an admin-supplied outcome
	ForceSettle(ctx context.Context, roundUUID uuid.UUID, override *games.Outcome) error

	GetRoomState(ctx context.Context, roomCode string) (*RoomState, error)
	GetHistory(ctx context.Context, roomCode string, limit int) ([]*models.Round, error)
}

// RoomService exposes room listing and admin configuration
type RoomService interface {
	ListRooms(ctx context.Context) ([]*models.Room, error)
	SetRoomConfig(ctx context.Context, code string, update RoomConfigUpdate) (*models.Room, error)

	// SetSeedOverride pins (or with nil clears) the room's draw seed,
	// used for forced and test outcomes
	SetSeedOverride(ctx context.Context, code string, seed *int64) (*models.Room, error)
}
