// internal/writer/publisher.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/discord-status/internal/status"
)

// Publisher renders and delivers reports, one at a time.
// It is the only writer of the report identity.
type Publisher struct {
	remote  Remote
	store   IdentityStore
	display status.Display
	logger  *slog.Logger
	now     func() time.Time

	// 1-slot semaphore: publishes never overlap.
	sem chan struct{}

	mu   sync.Mutex
	last Outcome
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets a custom logger for the publisher.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Publisher.
func New(remote Remote, store IdentityStore, display status.Display, opts ...Option) *Publisher {
	p := &Publisher{
		remote:  remote,
		store:   store,
		display: display,
		logger:  slog.Default(),
		now:     time.Now,
		sem:     make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Publish submits a publish and returns immediately.
// The channel receives exactly one Outcome and is never closed early.
//
// The scheduler uses PublishSync because its reports must land in
// order. Publish is for callers outside the scheduler loop (one-off
// reports, tooling) that must not block; it shares the same publish
// slot, so it never overlaps or races the scheduler's reports.
func (p *Publisher) Publish(ctx context.Context, st status.Status, snap *status.Snapshot) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		out <- p.PublishSync(ctx, st, snap)
	}()
	return out
}

// PublishSync publishes and waits for the outcome.
// ctx bounds both the wait for the publish slot and the remote call.
func (p *Publisher) PublishSync(ctx context.Context, st status.Status, snap *status.Snapshot) Outcome {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		o := Outcome{Status: st, Action: Skipped, Err: ctx.Err(), At: p.now()}
		p.logger.Warn("publish abandoned waiting for slot", "status", st, "error", o.Err)
		return o
	}
	defer func() { <-p.sem }()

	o := p.publishLocked(ctx, st, snap)
	p.mu.Lock()
	p.last = o
	p.mu.Unlock()
	return o
}

// Last returns the most recent outcome (zero before the first publish).
func (p *Publisher) Last() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// publishLocked runs with the slot held.
func (p *Publisher) publishLocked(ctx context.Context, st status.Status, snap *status.Snapshot) Outcome {
	now := p.now()
	o := Outcome{Status: st, Action: Skipped, At: now}

	// Not an error: the next cycle retries.
	if !p.remote.Ready() {
		p.logger.Warn("remote not ready, skipping publish", "status", st)
		return o
	}

	doc, err := status.Render(st, snap, p.display, now)
	if err != nil {
		o.Err = fmt.Errorf("writer: render %s: %w", st, err)
		p.logger.Error("render failed", "status", st, "error", err)
		return o
	}

	id := p.store.MessageID()

	// ------------------------------------------------------------
	// FIRST REPORT
	// ------------------------------------------------------------

	if id == "" {
		newID, err := p.remote.Create(ctx, doc)
		if err != nil {
			o.Err = fmt.Errorf("writer: create: %w", err)
			p.logger.Warn("create report failed", "status", st, "error", err)
			return o
		}

		o.Action = Created
		o.MessageID = newID

		if err := p.store.SaveMessageID(ctx, newID); err != nil {
			// The report exists; only persistence failed.
			p.logger.Error("persist report identity failed",
				"message_id", newID, "error", err)
		} else {
			p.logger.Info("report created", "status", st, "message_id", newID)
		}
		return o
	}

	// ------------------------------------------------------------
	// EDIT IN PLACE
	// ------------------------------------------------------------

	o.MessageID = id
	if err := p.remote.Edit(ctx, id, doc); err != nil {
		o.Err = fmt.Errorf("writer: edit %s: %w", id, err)
		if errors.Is(err, ErrReportMissing) {
			p.logger.Warn("report missing remotely; clear the stored identity to post a new one",
				"status", st, "message_id", id, "error", err)
		} else {
			p.logger.Warn("edit report failed", "status", st, "message_id", id, "error", err)
		}
		return o
	}

	o.Action = Edited
	p.logger.Debug("report updated", "status", st, "message_id", id)
	return o
}
