// internal/host/capture.go
package host

import (
	"context"
	"time"

	"github.com/tamzrod/discord-status/internal/status"
)

// Capturer produces snapshots from the authority for background callers.
type Capturer struct {
	auth *Authority
	now  func() time.Time
}

// NewCapturer binds a capturer to an authority.
func NewCapturer(auth *Authority) *Capturer {
	return &Capturer{auth: auth, now: time.Now}
}

type captured struct {
	st   status.Status
	snap *status.Snapshot
	err  error
}

// Capture reads one snapshot. ctx bounds both submission and the wait.
func (c *Capturer) Capture(ctx context.Context) (status.Status, *status.Snapshot, error) {
	fut, err := Call(ctx, c.auth, func(s *State) captured {
		st, snap, err := s.Snapshot(c.now())
		return captured{st: st, snap: snap, err: err}
	})
	if err != nil {
		return status.Starting, nil, err
	}

	res, err := fut.Await(ctx)
	if err != nil {
		return status.Starting, nil, err
	}
	return res.st, res.snap, res.err
}

// Health is a copy of the authority state for reporting.
type Health struct {
	Observed  bool
	Reachable bool
	Failures  int
	LastErr   string
	LastPoll  time.Time
	UpSince   time.Time
	StartedAt time.Time
}

// Health reads a copy of the poll bookkeeping.
func (c *Capturer) Health(ctx context.Context) (Health, error) {
	fut, err := Call(ctx, c.auth, func(s *State) Health {
		h := Health{
			Observed:  s.Observed,
			Reachable: s.Reachable,
			Failures:  s.Failures,
			LastPoll:  s.LastPoll,
			UpSince:   s.UpSince,
			StartedAt: s.StartedAt,
		}
		if s.LastErr != nil {
			h.LastErr = s.LastErr.Error()
		}
		return h
	})
	if err != nil {
		return Health{}, err
	}
	return fut.Await(ctx)
}
