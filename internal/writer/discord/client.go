// internal/writer/discord/client.go
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tamzrod/discord-status/internal/status"
	"github.com/tamzrod/discord-status/internal/writer"
)

// Client implements writer.Remote and the scheduler's connector on a
// single Discord bot session bound to one channel.
type Client struct {
	session   *discordgo.Session
	channelID string
	logger    *slog.Logger

	// Session lifecycle, replaceable in tests.
	openSession  func() error
	closeSession func() error

	connected atomic.Bool // gateway is up
	resolved  atomic.Bool // channel checked and writable
	stalled   atomic.Bool // Open outlived Connect and still holds the session lock
	closeOnce sync.Once
}

// Config is minimal transport config.
type Config struct {
	Token     string
	ChannelID string
	Logger    *slog.Logger
}

// New creates a client. No network I/O happens until Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord client: token required")
	}
	if cfg.ChannelID == "" {
		return nil, errors.New("discord client: channel id required")
	}

	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord client: %w", err)
	}
	// Sending embeds needs no privileged intents.
	s.Identify.Intents = discordgo.IntentsGuilds

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		session:      s,
		channelID:    cfg.ChannelID,
		logger:       logger,
		openSession:  s.Open,
		closeSession: s.Close,
	}

	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		if c.stalled.Load() {
			return
		}
		c.connected.Store(true)
		c.logger.Info("discord ready", "user", r.User.String(), "guilds", len(r.Guilds))
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		if c.stalled.Load() {
			return
		}
		c.connected.Store(true)
		c.logger.Info("discord session resumed")
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		c.connected.Store(false)
		c.logger.Warn("discord gateway disconnected")
	})

	return c, nil
}

// Connect opens the gateway, waits for READY and checks the channel.
// ctx bounds the whole handshake, including the gateway open.
// On failure the session is closed.
func (c *Client) Connect(ctx context.Context) error {
	ready := make(chan struct{})
	var once sync.Once
	remove := c.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		once.Do(func() { close(ready) })
	})
	defer remove()

	opened := make(chan error, 1)
	go func() { opened <- c.openSession() }()

	select {
	case err := <-opened:
		if err != nil {
			return fmt.Errorf("discord: open gateway: %w", err)
		}
	case <-ctx.Done():
		// Open holds the session lock until the handshake ends, so a
		// Close now would block. Release the session once Open returns.
		c.stalled.Store(true)
		go func() {
			if err := <-opened; err == nil {
				_ = c.closeSession()
			}
		}()
		return fmt.Errorf("discord: open gateway: %w", ctx.Err())
	}

	select {
	case <-ready:
		c.connected.Store(true)
	case <-ctx.Done():
		_ = c.Close()
		return fmt.Errorf("discord: waiting for ready: %w", ctx.Err())
	}

	ch, err := c.session.Channel(c.channelID, discordgo.WithContext(ctx))
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("discord: resolve channel %s: %w", c.channelID, describe(err))
	}
	if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
		_ = c.Close()
		return fmt.Errorf("discord: channel %s is not a text channel (type %d)", c.channelID, ch.Type)
	}

	c.resolved.Store(true)
	c.logger.Info("status channel resolved", "channel_id", ch.ID, "name", ch.Name)
	return nil
}

// Connected reports whether the gateway session is up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Ready reports whether publishes can go out now.
func (c *Client) Ready() bool {
	return c.connected.Load() && c.resolved.Load()
}

// Close releases the session. Safe to call more than once.
// It never waits on a gateway open abandoned by Connect.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		c.resolved.Store(false)
		if c.stalled.Load() {
			return
		}
		err = c.closeSession()
	})
	return err
}

// ---- writer.Remote interface ----

func (c *Client) Create(ctx context.Context, doc status.Document) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(c.channelID, Embed(doc), discordgo.WithContext(ctx))
	if err != nil {
		return "", describe(err)
	}
	return msg.ID, nil
}

func (c *Client) Edit(ctx context.Context, messageID string, doc status.Document) error {
	_, err := c.session.ChannelMessageEditEmbed(c.channelID, messageID, Embed(doc), discordgo.WithContext(ctx))
	if err != nil {
		return describe(err)
	}
	return nil
}

// ---- helpers ----

// Embed converts a rendered document into a Discord embed.
func Embed(doc status.Document) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:  doc.Title,
		Color:  doc.Color,
		Fields: make([]*discordgo.MessageEmbedField, 0, len(doc.Fields)),
	}
	for _, f := range doc.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if doc.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: doc.ImageURL}
	}
	if !doc.Timestamp.IsZero() {
		e.Timestamp = doc.Timestamp.UTC().Format(time.RFC3339)
	}
	if doc.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: doc.Footer}
	}
	return e
}

// describe surfaces the Discord error code and message.
// A deleted report maps onto writer.ErrReportMissing.
func describe(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Message == nil {
		return err
	}

	code, msg := rest.Message.Code, rest.Message.Message
	if code == discordgo.ErrCodeUnknownMessage {
		return fmt.Errorf("%w (discord %d: %s)", writer.ErrReportMissing, code, msg)
	}
	return fmt.Errorf("discord %d: %s: %w", code, msg, err)
}
