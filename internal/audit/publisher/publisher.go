// Package publisher emits audit events to the configured sinks.
//
// The publisher is fail-open: audit delivery problems are logged but never
// fail the business operation that emitted the event. Operations that must
// not proceed without an audit record should write to the store directly.
package publisher

import (
	"context"
	"log/slog"

	"assettrack/internal/audit"
	"assettrack/pkg/requestcontext"
)

// Publisher fans audit events out to the store, the structured log, and an
// optional external sink (e.g. Kafka).
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	sink   Sink
}

// Sink is an optional external destination for audit events.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
	Close()
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for event mirroring and error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithSink attaches an external sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// New creates a publisher writing to the given store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records an audit event. Timestamp and request id default from the
// request context when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit store append failed",
				"action", event.Action,
				"entity_id", event.EntityID,
				"error", err,
			)
		}
		return err
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"actor", event.Actor,
			"entity_id", event.EntityID,
			"request_id", event.RequestID,
		)
	}

	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// Close releases the external sink, flushing buffered events.
func (p *Publisher) Close() {
	if p.sink != nil {
		p.sink.Close()
	}
}
