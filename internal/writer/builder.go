// internal/writer/builder.go
package writer

import (
	"context"

	cfg "github.com/tamzrod/discord-status/internal/config"
	"github.com/tamzrod/discord-status/internal/status"
	"github.com/tamzrod/discord-status/internal/writer/sqlite"
)

// BuildDisplay converts the static server info into render input.
func BuildDisplay(si cfg.ServerInfoConfig) status.Display {
	return status.Display{
		Name:      si.Name,
		Platform:  si.Platform,
		IP:        si.IP,
		BannerURL: si.BannerURL,
	}
}

// BuildIdentityStore picks where the report identity lives.
// With state.path set it is SQLite (seeded from the config file);
// otherwise it is written back into the config file at configPath.
// The returned closer is always non-nil.
func BuildIdentityStore(ctx context.Context, c *cfg.Config, configPath string) (IdentityStore, func() error, error) {
	if c.State.Path == "" {
		return cfg.NewFileStore(configPath, c.Discord.StatusMessageID), func() error { return nil }, nil
	}

	s, err := sqlite.Open(ctx, c.State.Path, c.Discord.StatusChannelID, c.Discord.StatusMessageID)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
