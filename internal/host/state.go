// internal/host/state.go
package host

import (
	"errors"
	"time"

	"github.com/tamzrod/discord-status/internal/poller"
	"github.com/tamzrod/discord-status/internal/status"
)

// ErrNotObserved means no poll result has arrived yet.
var ErrNotObserved = errors.New("host: game server not observed yet")

// State is the live view of the game server.
// It is owned by the Authority goroutine; nothing else may touch it.
type State struct {
	StartedAt time.Time

	Version       string
	OnlinePlayers int
	MaxPlayers    int
	Whitelist     bool

	Observed  bool
	Reachable bool
	UpSince   time.Time
	Failures  int
	LastErr   error
	LastPoll  time.Time

	threshold int
}

// NewState creates the authority state.
// threshold is the number of consecutive failed polls after which
// the server is reported offline (values < 1 mean 1).
func NewState(startedAt time.Time, threshold int) *State {
	if threshold < 1 {
		threshold = 1
	}
	return &State{StartedAt: startedAt, threshold: threshold}
}

// Apply folds one poll result into the state.
func (s *State) Apply(r poller.PollResult) {
	s.Observed = true
	s.LastPoll = r.At

	if r.Err != nil {
		s.Failures++
		s.LastErr = r.Err
		if s.Failures >= s.threshold {
			s.Reachable = false
		}
		return
	}

	if !s.Reachable {
		// Back from an unknown or offline period.
		s.UpSince = r.At
	}
	s.Reachable = true
	s.Failures = 0
	s.LastErr = nil

	s.Version = r.Version
	s.OnlinePlayers = r.OnlinePlayers
	s.MaxPlayers = r.MaxPlayers
	s.Whitelist = r.Whitelist
}

// Snapshot builds the immutable value handed to the publisher.
// Must only run on the authority.
func (s *State) Snapshot(now time.Time) (status.Status, *status.Snapshot, error) {
	if !s.Observed {
		return status.Starting, nil, ErrNotObserved
	}
	if !s.Reachable {
		if s.Failures >= s.threshold {
			return status.Offline, nil, nil
		}
		// Failing, but not yet past the threshold, and never seen up.
		return status.Starting, nil, ErrNotObserved
	}

	since := s.UpSince
	if since.IsZero() {
		since = s.StartedAt
	}

	snap := &status.Snapshot{
		Version:       s.Version,
		OnlinePlayers: s.OnlinePlayers,
		MaxPlayers:    s.MaxPlayers,
		Whitelist:     s.Whitelist,
		Uptime:        status.Uptime(now.UnixMilli(), since.UnixMilli()),
	}
	return status.Online, snap, nil
}
