package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"croupier/events"
	"croupier/games"
	"croupier/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, initialWallet int64) (*models.User, error) {
	args := m.Called(ctx, username, initialWallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Credit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error) {
	args := m.Called(ctx, userID, partition, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Debit(ctx context.Context, userID int64, partition models.Partition, amount int64) (int64, error) {
	args := m.Called(ctx, userID, partition, amount)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoomRepository is a mock implementation of RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) GetByID(ctx context.Context, roomID int64) (*models.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomRepository) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomRepository) GetEnabled(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomRepository) GetAll(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomRepository) Update(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) LockRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoundRepository) GetOpenForRoom(ctx context.Context, roomID int64) (*models.Round, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, roundID int64) (*models.Round, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByUUID(ctx context.Context, roundUUID uuid.UUID) (*models.Round, error) {
	args := m.Called(ctx, roundUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Create(ctx context.Context, round *models.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) MarkRevealing(ctx context.Context, roundID int64, outcome *games.Outcome, revealStartedAt time.Time) (bool, error) {
	args := m.Called(ctx, roundID, outcome, revealStartedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoundRepository) MarkSettled(ctx context.Context, roundID int64, settledAt time.Time) (bool, error) {
	args := m.Called(ctx, roundID, settledAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoundRepository) History(ctx context.Context, roomID int64, limit int) ([]*models.Round, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Round), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByUUID(ctx context.Context, betUUID uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, betUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByRound(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Delete(ctx context.Context, betID int64) error {
	args := m.Called(ctx, betID)
	return args.Error(0)
}

func (m *MockBetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumDeltas(ctx context.Context, userID int64, partition models.Partition) (int64, error) {
	args := m.Called(ctx, userID, partition)
	return args.Get(0).(int64), args.Error(1)
}

// recordingEventBus captures published events so tests can assert on them
// without a real bus.
type recordingEventBus struct {
	published []events.Event
}

func (b *recordingEventBus) Publish(e events.Event) {
	b.published = append(b.published, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories; published events are recorded for
// inspection via PublishedEvents.
type MockUnitOfWork struct {
	mock.Mock

	userRepo   UserRepository
	roomRepo   RoomRepository
	roundRepo  RoundRepository
	betRepo    BetRepository
	ledgerRepo LedgerRepository
	bus        recordingEventBus
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(user UserRepository, room RoomRepository, round RoundRepository, bet BetRepository, ledger LedgerRepository) {
	m.userRepo = user
	m.roomRepo = room
	m.roundRepo = round
	m.betRepo = bet
	m.ledgerRepo = ledger
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository     { return m.userRepo }
func (m *MockUnitOfWork) RoomRepository() RoomRepository     { return m.roomRepo }
func (m *MockUnitOfWork) RoundRepository() RoundRepository   { return m.roundRepo }
func (m *MockUnitOfWork) BetRepository() BetRepository       { return m.betRepo }
func (m *MockUnitOfWork) LedgerRepository() LedgerRepository { return m.ledgerRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher           { return &m.bus }

// PublishedEvents returns every event queued on this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.bus.published
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
