package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// redactedMask replaces all but the last four characters of a secret.
const redactedMask = "****"

// ErrConfigExists is returned by WriteFile when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

// Validate reports settings the service cannot start with. A missing API key
// or bot id is not an error here: the upstream rejects those calls and the
// failure surfaces per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Server.Port)
	}
	if c.Coze.Timeout.Duration <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Coze.Timeout)
	}
	return nil
}

// MissingCredentials returns the names of unset upstream credentials, in the
// order an operator would set them.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Coze.APIKey == "" {
		missing = append(missing, "COZE_API_KEY")
	}
	if c.Coze.BotID == "" {
		missing = append(missing, "COZE_BOT_ID")
	}
	return missing
}

// AllowedOrigins splits the CORS origin list, dropping blanks.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Redacted returns a copy of c that is safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.Coze.APIKey = redact(c.Coze.APIKey)
	return &out
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return redactedMask
	}
	return redactedMask + secret[len(secret)-4:]
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// ParseConfigTOML parses raw TOML bytes into a Config, starting from the
// defaults so that keys absent from the file keep their default values.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	return cfg, nil
}

// WriteFile writes c to path with owner-only permissions. It refuses to
// replace an existing file.
func WriteFile(path string, c *Config) error {
	if c == nil {
		return errors.New("cannot write nil config")
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("creating config: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config: %w", err)
	}

	return f.Close()
}
