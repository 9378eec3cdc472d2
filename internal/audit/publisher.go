package audit

import (
	"context"
	"log/slog"
	"sync"

	"onboard/internal/platform/privacy"
	"onboard/pkg/requestcontext"
)

// Publisher records audit events. Events are append-only; persistence is
// delegated to a Store so tests can swap sinks.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them on a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
}

// Close drains queued events.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit fills the timestamp, request ID and client metadata from ctx when the
// caller left them empty, then stores the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Client == "" {
		event.Client = DescribeClient(requestcontext.UserAgent(ctx))
	}
	if event.IPPrefix == "" {
		if ip := requestcontext.ClientIP(ctx); ip != "" {
			event.IPPrefix = privacy.AnonymizeIP(ip)
		}
	}

	if p.async {
		select {
		case p.events <- event:
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", event.Action,
					"subject", event.Subject,
				)
			}
		}
		return nil
	}
	return p.store.Append(ctx, event)
}

// ListBySubject returns the trail for one application, oldest first.
func (p *Publisher) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
