// internal/poller/types.go
package poller

import "time"

// Ping is the raw answer of one server list ping.
// Values only: no reachability policy.
type Ping struct {
	Version       string // full version name as reported
	OnlinePlayers int
	MaxPlayers    int
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At time.Time

	Version       string // truncated at the first '-'
	OnlinePlayers int
	MaxPlayers    int
	Whitelist     bool

	Err error // non-nil means the game server did not answer
}
