package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MemoryBus is an in-process Bus for single-instance deployments and tests.
// Publish dispatches synchronously to every registered handler.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Publish JSON-encodes the event and invokes every handler registered for
// the subject. A failing handler does not block its siblings.
func (b *MemoryBus) Publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	b.mu.RLock()
	handlers := b.handlers[subject]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, data); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for the subject.
func (b *MemoryBus) Subscribe(subject string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	return nil
}

// Close is a no-op for the in-memory bus.
func (b *MemoryBus) Close() {}
