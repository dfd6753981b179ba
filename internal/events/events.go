// Package events publishes import notifications to NATS so other services
// (site rebuilds, chat notifications) can react to new documentation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/logfields"
)

// ImportEvent describes the outcome of one version import.
type ImportEvent struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	Documents int       `json:"documents"`
	Changed   int       `json:"changed"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends import events.
type Publisher interface {
	Publish(ctx context.Context, event ImportEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ImportEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes events as JSON with core NATS.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewPublisher returns a NATS publisher when events are enabled and a
// NoopPublisher otherwise.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("igdocs"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errors.EventsError("failed to connect to NATS").WithCause(err).
			WithContext("url", cfg.NATSURL).Retryable().Build()
	}
	slog.Info("NATS publisher connected", logfields.URL(cfg.NATSURL), slog.String("subject", cfg.Subject))
	return newNATSPublisher(nc, cfg.Subject), nil
}

func newNATSPublisher(c conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject}
}

// Publish sends event on the configured subject and waits for the server to
// acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event ImportEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.EventsError("failed to publish event").WithCause(err).
			WithContext("subject", p.subject).Build()
	}
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return errors.EventsError("failed to flush event").WithCause(err).
			WithContext("subject", p.subject).Build()
	}
	slog.Debug("Published import event", logfields.Version(event.Version), logfields.RunID(event.RunID))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
