package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Channel names for hub domain events.
const (
	ChannelUsers = "hub.users"
	ChannelPosts = "hub.posts"
)

// Event names carried in the message attributes.
const (
	UserSignedUp = "user.signed_up"
	PostCreated  = "post.created"
)

// Backend defines the broker-agnostic publish operations used by the hub.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher emits domain events best-effort: a broker failure is logged
// and never surfaced to the request that produced the event. A nil
// Publisher is valid and drops everything.
type Publisher struct {
	backend Backend
	log     *slog.Logger
}

// NewPublisher wraps a backend. backend may not be nil; use a nil
// *Publisher to disable events entirely.
func NewPublisher(backend Backend, log *slog.Logger) *Publisher {
	return &Publisher{backend: backend, log: log}
}

// Publish marshals the payload and sends it on the channel with the
// event name attached as an attribute.
func (p *Publisher) Publish(ctx context.Context, channel, event string, payload any) {
	if p == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.log.ErrorContext(ctx, "event payload marshal failed", "event", event, "error", err)
		return
	}

	attrs := map[string]string{
		"event":        event,
		"emitted_at":   time.Now().UTC().Format(time.RFC3339),
		"content_type": "application/json",
	}
	if _, err := p.backend.Publish(ctx, channel, data, attrs); err != nil {
		p.log.ErrorContext(ctx, "event publish failed", "event", event, "channel", channel, "error", err)
	}
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.backend.Close()
}
