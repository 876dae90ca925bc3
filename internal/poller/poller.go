// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Client abstracts the server list ping the poller needs.
type Client interface {
	Ping(ctx context.Context) (Ping, error)
}

// WhitelistFunc reports whether the whitelist is enforced.
type WhitelistFunc func() (bool, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Poller is a dumb, clock-driven poller.
// PollOnce is not safe for concurrent use; Run is its only caller.
type Poller struct {
	cfg       Config
	client    Client
	whitelist WhitelistFunc
	now       func() time.Time
	logger    *slog.Logger

	// Transition tracking, so a long outage logs once, not per cycle.
	down     bool
	wlFailed string
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets a custom logger for the poller.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a poller with immutable config.
// whitelist may be nil; the flag then always reads false.
func New(cfg Config, client Client, whitelist WhitelistFunc, opts ...Option) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("poller: timeout must be > 0")
	}
	p := &Poller{
		cfg:       cfg,
		client:    client,
		whitelist: whitelist,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: a failed ping yields only Err.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{At: p.now()}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ping, err := p.client.Ping(ctx)
	if err != nil {
		res.Err = err
		if !p.down {
			p.logger.Warn("game server not answering", "error", err)
		}
		p.down = true
		return res
	}
	if p.down {
		p.logger.Info("game server answering again")
	}
	p.down = false

	// A server that answers but cannot report its whitelist is still up.
	var wl bool
	if p.whitelist != nil {
		v, err := p.whitelist()
		switch {
		case err != nil:
			if msg := err.Error(); msg != p.wlFailed {
				p.logger.Warn("whitelist unreadable, reporting off", "error", err)
				p.wlFailed = msg
			}
		default:
			if p.wlFailed != "" {
				p.logger.Info("whitelist readable again")
				p.wlFailed = ""
			}
			wl = v
		}
	}

	res.Version = ShortVersion(ping.Version)
	res.OnlinePlayers = max(ping.OnlinePlayers, 0)
	res.MaxPlayers = max(ping.MaxPlayers, 0)
	res.Whitelist = wl
	return res
}

// ShortVersion drops any build suffix: "1.20.4-R0.1-SNAPSHOT" -> "1.20.4".
func ShortVersion(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '-'); i >= 0 {
		return v[:i]
	}
	return v
}
