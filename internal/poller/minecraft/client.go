// internal/poller/minecraft/client.go
package minecraft

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tnze/go-mc/bot"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client pings a Java Edition server via the server list protocol.
// Each Ping dials a fresh connection; there is nothing to close.
type Client struct {
	addr string
}

// Config is minimal transport config.
type Config struct {
	Address string // host:port
}

// Status is the decoded subset of a server list response.
type Status struct {
	Version       string
	OnlinePlayers int
	MaxPlayers    int
}

// listResponse mirrors the JSON a server returns to a status request.
// description is omitted: it can be a string or a chat component.
type listResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
}

// New creates a client for addr.
func New(cfg Config) *Client {
	return &Client{addr: cfg.Address}
}

// Ping performs one status exchange bounded by ctx.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	if c == nil || c.addr == "" {
		return Status{}, errors.New("minecraft client: address required")
	}

	raw, _, err := bot.PingAndListContext(ctx, c.addr)
	if err != nil {
		return Status{}, fmt.Errorf("minecraft: ping %s: %w", c.addr, err)
	}
	return DecodeStatus(raw)
}

// DecodeStatus parses a raw server list JSON payload.
func DecodeStatus(raw []byte) (Status, error) {
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Status{}, fmt.Errorf("minecraft: decode status: %w", err)
	}
	return Status{
		Version:       resp.Version.Name,
		OnlinePlayers: resp.Players.Online,
		MaxPlayers:    resp.Players.Max,
	}, nil
}
