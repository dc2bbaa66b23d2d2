package config

import (
	"github.com/spf13/cobra"
)

// Persistent flags declared on the root command.
const (
	ConfigFileFlag = "config"
	DebugFlag      = "debug"
)

// FromCommand resolves the Config for cmd. It reads the --config file when
// given, layers the environment on top and then the registry flags the user
// set on cmd. The root --debug flag maps to log.debug.
func FromCommand(cmd *cobra.Command, registryKeys []string) (*Config, error) {
	configFile, _ := cmd.Flags().GetString(ConfigFileFlag)

	v, err := InitViper(configFile)
	if err != nil {
		return nil, err
	}

	BindRegisteredFlags(v, cmd, Flags, registryKeys)
	if f := cmd.Flags().Lookup(DebugFlag); f != nil {
		_ = v.BindPFlag("log.debug", f)
	}

	return Load(v)
}
