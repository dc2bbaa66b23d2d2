package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands and descriptions inline, so the same logical flag reads the same
// on "serve" and "chat".
type Flag struct {
	// Name is the long flag name (e.g. "port").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.port").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagAPIKey      = "api-key"
	FlagBotID       = "bot-id"
	FlagUserID      = "user-id"
	FlagTimeout     = "timeout"
	FlagPort        = "port"
	FlagCORSOrigins = "cors-origins"
	FlagMCP         = "mcp"
	FlagLogJSON     = "log-json"
	FlagLogFile     = "log-file"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    "coze.api_key",
		Description: "Coze API key (env COZE_API_KEY)",
	},
	FlagBotID: {
		Name:        "bot-id",
		Shorthand:   "b",
		ViperKey:    "coze.bot_id",
		Description: "Coze bot id (env COZE_BOT_ID)",
	},
	FlagUserID: {
		Name:        "user-id",
		ViperKey:    "coze.user_id",
		Description: "User id sent to Coze with each message",
	},
	FlagTimeout: {
		Name:        "timeout",
		Shorthand:   "t",
		ViperKey:    "coze.timeout",
		Description: "Deadline for one chat exchange",
	},
	FlagPort: {
		Name:        "port",
		Shorthand:   "p",
		ViperKey:    "server.port",
		Description: "Port for the HTTP server (env PORT)",
	},
	FlagCORSOrigins: {
		Name:        "cors-origins",
		ViperKey:    "server.cors_origins",
		Description: "Comma separated list of allowed CORS origins",
	},
	FlagMCP: {
		Name:        "mcp",
		ViperKey:    "server.mcp",
		Description: "Expose the chat tool over MCP at /mcp",
	},
	FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Write JSON logs instead of pretty output",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "log.file",
		Description: "Also append JSON logs to this file",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaults().GetString(def.ViperKey), def.Description)
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaults().GetInt(def.ViperKey), def.Description)
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaults().GetBool(def.ViperKey), def.Description)
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, key string, target *time.Duration) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().DurationVarP(target, def.Name, def.Shorthand, defaults().GetDuration(def.ViperKey), def.Description)
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
