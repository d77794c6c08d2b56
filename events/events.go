package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRaceScheduled EventType = "race_scheduled"
	EventTypeBetPlaced     EventType = "bet_placed"
	EventTypeRaceSettled   EventType = "race_settled"
	EventTypeRacerRetired  EventType = "racer_retired"
	EventTypeBalanceChange EventType = "balance_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RaceScheduledEvent represents a race row created by the daily quota step
// or by an admin force-start
type RaceScheduledEvent struct {
	RaceID  int64
	GuildID int64
}

func (e RaceScheduledEvent) Type() EventType {
	return EventTypeRaceScheduled
}

// BetPlacedEvent represents a bet placed (or replaced) on a race
type BetPlacedEvent struct {
	BetID    int64
	RaceID   int64
	UserID   int64
	RacerID  int64
	Amount   int64
	Refunded int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// RaceSettledEvent represents a race whose bets have been resolved
type RaceSettledEvent struct {
	RaceID        int64
	GuildID       int64
	WinnerRacerID *int64
	TotalPayout   int64
	BetCount      int
}

func (e RaceSettledEvent) Type() EventType {
	return EventTypeRaceSettled
}

// RacerRetiredEvent represents a racer retired after a race, with the
// successor created in its place
type RacerRetiredEvent struct {
	GuildID       int64
	RacerID       int64
	RacerName     string
	OwnerID       int64
	SuccessorID   int64
	SuccessorName string
}

func (e RacerRetiredEvent) Type() EventType {
	return EventTypeRacerRetired
}

// BalanceChangeEvent represents a wallet balance change that occurred
type BalanceChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	Reason     string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
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
	}).Debug("Subscribed handler to event type on main event bus")
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
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction lifecycle, so
	// emit with a background context rather than the (possibly expired)
	// transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
