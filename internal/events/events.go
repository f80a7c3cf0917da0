package events

import (
	"sync"
	"time"
)

// Reservation event types published by the booking lifecycle.
const (
	ReservationCreated   = "reservation.created"
	ReservationUpdated   = "reservation.updated"
	ReservationMoved     = "reservation.moved"
	ReservationCancelled = "reservation.cancelled"
	ReservationParked    = "reservation.parked"
	ReservationUnparked  = "reservation.unparked"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Date      string // reservation date, YYYY-MM-DD
	RoomID    int64
	Payload   any
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events. Subscribers drive
// metrics and schedule-cache invalidation.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every reservation event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, t := range []string{
		ReservationCreated, ReservationUpdated, ReservationMoved,
		ReservationCancelled, ReservationParked, ReservationUnparked,
	} {
		b.Subscribe(t, handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}
