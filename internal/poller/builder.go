// internal/poller/builder.go
package poller

import (
	"context"

	cfg "github.com/tamzrod/discord-status/internal/config"
	"github.com/tamzrod/discord-status/internal/poller/minecraft"
)

// Build constructs a Poller against the configured game server.
// The ping dials per cycle, so there is no connection to close.
func Build(m cfg.MinecraftConfig, opts ...Option) (*Poller, error) {
	client := minecraft.New(minecraft.Config{Address: m.Address})

	var wl WhitelistFunc
	if m.ServerProperties != "" {
		path := m.ServerProperties
		wl = func() (bool, error) { return minecraft.ReadWhitelist(path) }
	}

	return New(
		Config{
			Interval: m.PollInterval(),
			Timeout:  m.Timeout(),
		},
		pingAdapter{client},
		wl,
		opts...,
	)
}

// pingAdapter maps the transport's Status onto Ping.
type pingAdapter struct {
	c *minecraft.Client
}

func (a pingAdapter) Ping(ctx context.Context) (Ping, error) {
	st, err := a.c.Ping(ctx)
	if err != nil {
		return Ping{}, err
	}
	return Ping{
		Version:       st.Version,
		OnlinePlayers: st.OnlinePlayers,
		MaxPlayers:    st.MaxPlayers,
	}, nil
}
