// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls once immediately, then on every tick, and emits each
// PollResult on out. One goroutine. No overlap. No retries.
// Run returns when ctx is cancelled.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	if !p.emit(ctx, out) {
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.emit(ctx, out) {
				return
			}
		}
	}
}

func (p *Poller) emit(ctx context.Context, out chan<- PollResult) bool {
	res := p.PollOnce(ctx)
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}
