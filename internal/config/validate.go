// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Placeholders shipped in the sample config.
const (
	PlaceholderBotToken  = "YOUR_BOT_TOKEN_HERE"
	PlaceholderChannelID = "YOUR_CHANNEL_ID_HERE"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	var errs []string

	// ------------------------------------------------------------
	// CREDENTIALS + DESTINATION (fatal when missing)
	// ------------------------------------------------------------

	token := strings.TrimSpace(cfg.Discord.BotToken)
	if token == "" || token == PlaceholderBotToken {
		errs = append(errs, "discord.bot_token is not set")
	}

	channel := strings.TrimSpace(cfg.Discord.StatusChannelID)
	switch {
	case channel == "" || channel == PlaceholderChannelID:
		errs = append(errs, "discord.status_channel_id is not set")
	case !isSnowflake(channel):
		errs = append(errs, fmt.Sprintf("discord.status_channel_id %q must be a numeric channel id", channel))
	}

	if msg := strings.TrimSpace(cfg.Discord.StatusMessageID); msg != "" && !isSnowflake(msg) {
		errs = append(errs, fmt.Sprintf("discord.status_message_id %q must be numeric or empty", msg))
	}

	// ------------------------------------------------------------
	// CADENCE + TIMEOUTS (zero means default)
	// ------------------------------------------------------------

	nonNegative := []struct {
		key string
		val int
	}{
		{"update_interval", cfg.UpdateInterval},
		{"minecraft.poll_interval_ms", cfg.Minecraft.PollIntervalMs},
		{"minecraft.timeout_ms", cfg.Minecraft.TimeoutMs},
		{"minecraft.failure_threshold", cfg.Minecraft.FailureThreshold},
		{"timeouts.connect_seconds", cfg.Timeouts.ConnectSeconds},
		{"timeouts.snapshot_seconds", cfg.Timeouts.SnapshotSeconds},
		{"timeouts.publish_seconds", cfg.Timeouts.PublishSeconds},
		{"timeouts.shutdown_seconds", cfg.Timeouts.ShutdownSeconds},
	}
	for _, f := range nonNegative {
		if f.val < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", f.key, f.val))
		}
	}

	// Explicit zero is a valid, immediate first tick.
	if cfg.InitialDelay != nil && *cfg.InitialDelay < 0 {
		errs = append(errs, fmt.Sprintf("initial_delay must be >= 0, got %d", *cfg.InitialDelay))
	}

	// ------------------------------------------------------------
	// DISPLAY
	// ------------------------------------------------------------

	if banner := strings.TrimSpace(cfg.ServerInfo.BannerURL); banner != "" {
		u, err := url.Parse(banner)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("server_info.banner_url %q must be an http(s) URL", banner))
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, " | "))
	}
	return nil
}

// isSnowflake reports whether s looks like a Discord ID.
func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
