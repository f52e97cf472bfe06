package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"croupier/games"
	"croupier/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeBetPlaced     EventType = "bet_placed"
	EventTypeBetRefunded   EventType = "bet_refunded"
	EventTypeRoundOpened   EventType = "round_opened"
	EventTypeRoundRevealed EventType = "round_revealed"
	EventTypeRoundSettled  EventType = "round_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID       int64
	Partition    models.Partition
	OldBalance   int64
	NewBalance   int64
	EntryType    models.EntryType
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent represents a bet accepted into an open round
type BetPlacedEvent struct {
	UserID  int64
	RoundID int64
	BetID   int64
	Kind    games.BetKind
	Amount  int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetRefundedEvent represents a bet refunded before the lock
type BetRefundedEvent struct {
	UserID  int64
	RoundID int64
	BetID   int64
	Amount  int64
}

func (e BetRefundedEvent) Type() EventType {
	return EventTypeBetRefunded
}

// RoundOpenedEvent represents a fresh round opening for betting
type RoundOpenedEvent struct {
	RoomID  int64
	RoundID int64
	Day     string
	DaySeq  int
}

func (e RoundOpenedEvent) Type() EventType {
	return EventTypeRoundOpened
}

// RoundRevealedEvent represents the outcome draw at the end of betting
type RoundRevealedEvent struct {
	RoomID  int64
	RoundID int64
	Outcome *games.Outcome
}

func (e RoundRevealedEvent) Type() EventType {
	return EventTypeRoundRevealed
}

// RoundSettledEvent represents a completed settlement
type RoundSettledEvent struct {
	RoomID      int64
	RoundID     int64
	BetCount    int
	TotalStaked int64
	TotalPaid   int64
}

func (e RoundSettledEvent) Type() EventType {
	return EventTypeRoundSettled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with
	// transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
