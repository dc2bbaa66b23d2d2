// Package configcmder provides the config command for inspecting and
// bootstrapping cozeprox configuration.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Inspect and create cozeprox configuration.

Configuration is resolved from, highest precedence first: command flags,
environment variables (COZE_API_KEY, COZE_BOT_ID, COZE_USER_ID, COZE_TIMEOUT,
PORT, COZEPROX_*), the TOML file passed with --config, then defaults.

Examples:
  cozeprox config show
  cozeprox config show --config cozeprox.toml
  cozeprox config init cozeprox.toml`

const configShortDesc string = "Inspect and create cozeprox configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}
