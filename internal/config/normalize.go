// internal/config/normalize.go
package config

import (
	"net"
	"strings"
	"time"
)

// Defaults applied by Normalize.
const (
	DefaultUpdateInterval   = 60 // seconds
	DefaultInitialDelay     = 10 // seconds
	DefaultMinecraftAddress = "localhost:25565"
	DefaultMinecraftPort    = "25565"
	DefaultPollIntervalMs   = 5000
	DefaultPollTimeoutMs    = 3000
	DefaultFailureThreshold = 3
	DefaultConnectSeconds   = 30
	DefaultSnapshotSeconds  = 5
	DefaultPublishSeconds   = 10
	DefaultShutdownSeconds  = 15
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Discord.BotToken = strings.TrimSpace(cfg.Discord.BotToken)
	cfg.Discord.StatusChannelID = strings.TrimSpace(cfg.Discord.StatusChannelID)
	cfg.Discord.StatusMessageID = strings.TrimSpace(cfg.Discord.StatusMessageID)

	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	if cfg.InitialDelay == nil {
		d := DefaultInitialDelay
		cfg.InitialDelay = &d
	}

	// ---- game server ----

	mc := &cfg.Minecraft
	mc.Address = strings.TrimSpace(mc.Address)
	if mc.Address == "" {
		mc.Address = DefaultMinecraftAddress
	}
	// Bare hostnames use the vanilla port.
	if _, _, err := net.SplitHostPort(mc.Address); err != nil {
		mc.Address = net.JoinHostPort(mc.Address, DefaultMinecraftPort)
	}
	if mc.PollIntervalMs == 0 {
		mc.PollIntervalMs = DefaultPollIntervalMs
	}
	if mc.TimeoutMs == 0 {
		mc.TimeoutMs = DefaultPollTimeoutMs
	}
	if mc.FailureThreshold == 0 {
		mc.FailureThreshold = DefaultFailureThreshold
	}

	// ---- timeouts ----

	to := &cfg.Timeouts
	if to.ConnectSeconds == 0 {
		to.ConnectSeconds = DefaultConnectSeconds
	}
	if to.SnapshotSeconds == 0 {
		to.SnapshotSeconds = DefaultSnapshotSeconds
	}
	// A snapshot wait never outlives one tick.
	if to.SnapshotSeconds > cfg.UpdateInterval {
		to.SnapshotSeconds = cfg.UpdateInterval
	}
	if to.PublishSeconds == 0 {
		to.PublishSeconds = DefaultPublishSeconds
	}
	if to.ShutdownSeconds == 0 {
		to.ShutdownSeconds = DefaultShutdownSeconds
	}

	// ---- logging ----

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// ---- duration helpers (valid after Normalize) ----

func (c *Config) Interval() time.Duration { return seconds(c.UpdateInterval) }
func (c *Config) Delay() time.Duration {
	if c.InitialDelay == nil {
		return seconds(DefaultInitialDelay)
	}
	return seconds(*c.InitialDelay)
}
func (c *Config) ConnectTimeout() time.Duration { return seconds(c.Timeouts.ConnectSeconds) }
func (c *Config) SnapshotTimeout() time.Duration { return seconds(c.Timeouts.SnapshotSeconds) }
func (c *Config) PublishTimeout() time.Duration { return seconds(c.Timeouts.PublishSeconds) }
func (c *Config) ShutdownTimeout() time.Duration { return seconds(c.Timeouts.ShutdownSeconds) }

func (m MinecraftConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMs) * time.Millisecond
}

func (m MinecraftConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
