// Package publisher provides the default audit Emitter backed by a Store.
// Synchronous by default; WithAsyncBuffer switches to a buffered channel
// drained by a background goroutine for latency-sensitive call paths.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	"convoy/pkg/domain"
	audit "convoy/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// When the buffer is full, Emit falls back to synchronous append so events
// are never dropped.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an audit event. Async mode enqueues; sync mode appends
// directly. The category is derived from the action when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
			// Buffer full: degrade to synchronous append rather than drop.
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the audit trail for a driver.
func (p *Publisher) List(ctx context.Context, driverID domain.DriverID) ([]audit.Event, error) {
	return p.store.ListByDriver(ctx, driverID)
}

// Close stops the background drain goroutine, flushing queued events.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
			return
		}
		close(p.done)
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to append audit event",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
