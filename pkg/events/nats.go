package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSBus is a Bus backed by a NATS connection. Used when the sweeps and the
// request handlers run in separate processes.
type NATSBus struct {
	nc     *nats.Conn
	logger *zap.Logger
	subs   []*nats.Subscription
}

// NewNATSBus connects to the NATS server at url.
func NewNATSBus(url string, logger *zap.Logger) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.Name("shifthub"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSBus{nc: nc, logger: logger}, nil
}

// Publish JSON-encodes the event and publishes it to the subject.
func (b *NATSBus) Publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for the subject. Handler errors are logged;
// handlers recompute from stored state so a missed delivery is corrected by
// the next event.
func (b *NATSBus) Subscribe(subject string, handler Handler) error {
	sub, err := b.nc.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(context.Background(), msg.Data); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	b.subs = append(b.subs, sub)
	return nil
}

// Close drains subscriptions and closes the connection.
func (b *NATSBus) Close() {
	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	b.nc.Drain()
}
