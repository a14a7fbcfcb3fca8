package events

import (
	"log"
	"sync"
)

// Event names published for observers. Nothing in the call pipeline depends
// on anyone consuming them.
const (
	CallInitiated      = "call_initiated"
	BroadcastStarted   = "broadcast_started"
	BroadcastCompleted = "broadcast_completed"
)

// Bus interface
type Bus interface {
	Publish(event string, payload any) error
}

// NopBus drops every event. Used when no broker is configured.
type NopBus struct{}

func (NopBus) Publish(event string, payload any) error { return nil }

// InMemoryBus fans events out to in-process subscribers.
type InMemoryBus struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any)
}

// NewInMemoryBus creates a new bus
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]func(payload any)),
	}
}

// Publish sends an event to all subscribers. Events with no subscribers are
// dropped silently: observers are optional.
func (b *InMemoryBus) Publish(event string, payload any) error {
	b.mu.Lock()
	handlers := b.handlers[event]
	b.mu.Unlock()

	for _, handler := range handlers {
		go handler(payload)
	}
	return nil
}

// Subscribe adds a handler for an event
func (b *InMemoryBus) Subscribe(event string, handler func(payload any)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = append(b.handlers[event], handler)
}

// LogPublishError is a small helper for call sites that must not fail when
// the observer bus is down.
func LogPublishError(event string, err error) {
	if err != nil {
		log.Printf("⚠️ failed to publish %s event: %v\n", event, err)
	}
}
