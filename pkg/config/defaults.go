package config

import "time"

const (
	defaultUserID      = "1234567890"
	defaultTimeout     = 2 * time.Minute
	defaultPort        = 3000
	defaultCORSOrigins = "*"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Coze: CozeConfig{
			UserID:  defaultUserID,
			Timeout: Duration{defaultTimeout},
		},
		Server: ServerConfig{
			Port:        defaultPort,
			CORSOrigins: defaultCORSOrigins,
		},
	}
}
