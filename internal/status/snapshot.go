// internal/status/snapshot.go
package status

// Snapshot is a point-in-time view of the game server.
// It is built once per tick on the host authority and never mutated.
type Snapshot struct {
	Version       string
	OnlinePlayers int
	MaxPlayers    int
	Whitelist     bool
	Uptime        string
}

// Display holds the static, operator-supplied report fields.
type Display struct {
	Name      string
	Platform  string
	IP        string
	BannerURL string
}
