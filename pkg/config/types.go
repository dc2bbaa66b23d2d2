package config

import (
	"fmt"
	"time"
)

// Config is the process-wide cozeprox configuration. It is built once at
// startup and handed to each component; nothing reads the environment after
// that. The TOML layout mirrors the dotted viper keys.
type Config struct {
	Coze   CozeConfig   `toml:"coze"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// CozeConfig holds the upstream credentials and identifiers.
type CozeConfig struct {
	APIKey string `toml:"api_key"`
	BotID  string `toml:"bot_id"`
	UserID string `toml:"user_id"`

	// Timeout bounds one chat exchange, both upstream calls included.
	Timeout Duration `toml:"timeout"`
}

// ServerConfig holds the front door settings.
type ServerConfig struct {
	Port        int    `toml:"port"`
	CORSOrigins string `toml:"cors_origins"`
	MCP         bool   `toml:"mcp"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool   `toml:"debug"`
	JSON  bool   `toml:"json"`
	File  string `toml:"file,omitempty"`
}

// ListenAddr returns the address the front door binds to.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Duration is a time.Duration that reads and writes as "2m30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}
