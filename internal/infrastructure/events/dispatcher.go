// Package events provides an in-process dispatcher for domain events
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/shared"
	"github.com/smartmeals/v2/internal/ports/outbound"
)

// Handler reacts to a published domain event
type Handler func(ctx context.Context, event shared.DomainEvent) error

// Dispatcher delivers events synchronously to the handlers registered for
// their name. A failing handler is logged and does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *zap.Logger
}

var _ outbound.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		log:      log.Named("events"),
	}
}

// Publish dispatches an event to registered handlers
func (d *Dispatcher) Publish(ctx context.Context, event shared.DomainEvent) error {
	name := event.EventName()

	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[name]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.log.Debug("No handlers registered for event", zap.String("event", name))
		return nil
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Error("Failed to handle event",
				zap.String("event", name),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Register registers an event handler
func (d *Dispatcher) Register(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
}

// LogHandler records each event at info level
func LogHandler(log *zap.Logger) Handler {
	return func(ctx context.Context, event shared.DomainEvent) error {
		log.Info("Domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
		return nil
	}
}
