// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvBotToken overrides discord.bot_token when set.
const EnvBotToken = "STATUSBOT_BOT_TOKEN"

// Load reads a YAML config file.
// It does not validate or apply defaults; callers run Validate then Normalize.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Environment takes precedence over the file for secrets.
	if tok := strings.TrimSpace(os.Getenv(EnvBotToken)); tok != "" {
		cfg.Discord.BotToken = tok
	}

	return &cfg, nil
}
