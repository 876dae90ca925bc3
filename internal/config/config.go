// internal/config/config.go
package config

type Config struct {
	Discord        DiscordConfig    `yaml:"discord"`
	UpdateInterval int              `yaml:"update_interval"` // seconds
	InitialDelay   *int             `yaml:"initial_delay"`   // seconds; nil means default, 0 means immediate
	ServerInfo     ServerInfoConfig `yaml:"server_info"`
	Minecraft      MinecraftConfig  `yaml:"minecraft"`
	Timeouts       TimeoutsConfig   `yaml:"timeouts"`
	State          StateConfig      `yaml:"state"`
	Admin          AdminConfig      `yaml:"admin"`
	Logging        LoggingConfig    `yaml:"logging"`
}

// ---- DISCORD ----

type DiscordConfig struct {
	BotToken        string `yaml:"bot_token"`
	StatusChannelID string `yaml:"status_channel_id"`

	// Report identity. Written back by the publisher after the first
	// successful create; empty means "no live report yet".
	StatusMessageID string `yaml:"status_message_id"`
}

// ---- DISPLAY ----

type ServerInfoConfig struct {
	Name      string `yaml:"name"`
	Platform  string `yaml:"platform"`
	IP        string `yaml:"ip"`
	BannerURL string `yaml:"banner_url"`
}

// ---- GAME SERVER ----

type MinecraftConfig struct {
	Address          string `yaml:"address"`
	PollIntervalMs   int    `yaml:"poll_interval_ms"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	FailureThreshold int    `yaml:"failure_threshold"`

	// Optional path to server.properties; source of the whitelist flag.
	ServerProperties string `yaml:"server_properties"`
}

// ---- TIMEOUTS ----

type TimeoutsConfig struct {
	ConnectSeconds  int `yaml:"connect_seconds"`
	SnapshotSeconds int `yaml:"snapshot_seconds"`
	PublishSeconds  int `yaml:"publish_seconds"`
	ShutdownSeconds int `yaml:"shutdown_seconds"`
}

// ---- OPTIONAL SURFACES ----

// StateConfig selects the report identity store.
// Empty Path keeps the identity in this config file.
type StateConfig struct {
	Path string `yaml:"path"`
}

type AdminConfig struct {
	Listen string `yaml:"listen"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
