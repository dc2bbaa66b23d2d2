package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// envBindings maps each viper key to the environment variables that set it.
// The COZE_* names and PORT match the variables the service has always
// been deployed with.
var envBindings = map[string][]string{
	"coze.api_key":        {"COZE_API_KEY"},
	"coze.bot_id":         {"COZE_BOT_ID"},
	"coze.user_id":        {"COZE_USER_ID"},
	"coze.timeout":        {"COZE_TIMEOUT"},
	"server.port":         {"PORT"},
	"server.cors_origins": {"COZEPROX_CORS_ORIGINS"},
	"server.mcp":          {"COZEPROX_MCP"},
	"log.debug":           {"COZEPROX_DEBUG"},
	"log.json":            {"COZEPROX_LOG_JSON"},
	"log.file":            {"COZEPROX_LOG_FILE"},
}

// InitViper creates and returns a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (COZE_API_KEY, PORT, etc.)
//  3. The TOML file at configFile, when non-empty
//  4. Defaults from NewDefaultConfig()
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Coze: CozeConfig{
			APIKey:  v.GetString("coze.api_key"),
			BotID:   v.GetString("coze.bot_id"),
			UserID:  v.GetString("coze.user_id"),
			Timeout: Duration{v.GetDuration("coze.timeout")},
		},
		Server: ServerConfig{
			Port:        v.GetInt("server.port"),
			CORSOrigins: v.GetString("server.cors_origins"),
			MCP:         v.GetBool("server.mcp"),
		},
		Log: LogConfig{
			Debug: v.GetBool("log.debug"),
			JSON:  v.GetBool("log.json"),
			File:  v.GetString("log.file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("coze.api_key", d.Coze.APIKey)
	v.SetDefault("coze.bot_id", d.Coze.BotID)
	v.SetDefault("coze.user_id", d.Coze.UserID)
	v.SetDefault("coze.timeout", d.Coze.Timeout.Duration)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.mcp", d.Server.MCP)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
}
