// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `# status bot
discord:
  bot_token: "file-token"
  status_channel_id: "111"
  status_message_id: ""   # filled in by the bot
update_interval: 30
server_info:
  name: "Survival"
  platform: "Java Edition"
  ip: "play.example.net"
minecraft:
  address: "localhost"
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_ParsesFile(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	path := writeFile(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Discord.BotToken != "file-token" {
		t.Fatalf("token: got %q", cfg.Discord.BotToken)
	}
	if cfg.Discord.StatusChannelID != "111" {
		t.Fatalf("channel: got %q", cfg.Discord.StatusChannelID)
	}
	if cfg.UpdateInterval != 30 {
		t.Fatalf("interval: got %d", cfg.UpdateInterval)
	}
	if cfg.ServerInfo.Platform != "Java Edition" {
		t.Fatalf("platform: got %q", cfg.ServerInfo.Platform)
	}
	// Load never applies defaults.
	if cfg.InitialDelay != nil {
		t.Fatalf("initial delay: got %d", *cfg.InitialDelay)
	}
}

func TestLoad_EnvOverridesToken(t *testing.T) {
	t.Setenv(EnvBotToken, "env-token")
	path := writeFile(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.BotToken != "env-token" {
		t.Fatalf("token: got %q", cfg.Discord.BotToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "discord: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv(EnvBotToken, "")

	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if cfg.UpdateInterval != DefaultUpdateInterval || cfg.Delay() != DefaultInitialDelay*time.Second {
		t.Fatalf("example cadence: %d/%v", cfg.UpdateInterval, cfg.Delay())
	}
	// The shipped placeholders must never pass.
	if err := Validate(cfg); err == nil {
		t.Fatalf("example config must fail validation")
	}
}

func TestLoad_ZeroInitialDelaySurvivesNormalize(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	path := writeFile(t, "discord:\n  bot_token: x\n  status_channel_id: \"111\"\ninitial_delay: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InitialDelay == nil || *cfg.InitialDelay != 0 {
		t.Fatalf("explicit zero not loaded: %v", cfg.InitialDelay)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	Normalize(cfg)
	if cfg.Delay() != 0 {
		t.Fatalf("delay: got %v", cfg.Delay())
	}
}
