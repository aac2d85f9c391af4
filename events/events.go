package events

import (
	"context"
	"sync"

	"funbank/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeGameStarted   EventType = "game_started"
	EventTypeGameSettled   EventType = "game_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed balance movement
type BalanceChangeEvent struct {
	TransactionID int64
	FromUserID    *int64
	ToUserID      *int64
	Amount        int64
	GameType      *models.GameType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user registration
type UserCreatedEvent struct {
	UserID          int64
	Name            string
	StartingBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// GameStartedEvent represents a game whose entry fees were collected
type GameStartedEvent struct {
	GameID       int64
	GameType     models.GameType
	EntryFee     int64
	PotAmount    int64
	Participants int
}

func (e GameStartedEvent) Type() EventType {
	return EventTypeGameStarted
}

// GameSettledEvent represents a game paid out and completed
type GameSettledEvent struct {
	GameID    int64
	GameType  models.GameType
	Winner    string
	TotalPaid int64
}

func (e GameSettledEvent) Type() EventType {
	return EventTypeGameSettled
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

	// Handlers run asynchronously so a slow consumer cannot block the
	// request path.
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// releases them to the real bus only after the database commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the request transaction, so they are emitted on a
	// fresh context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
