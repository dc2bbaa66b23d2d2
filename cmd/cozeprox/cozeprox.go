// Package cozeproxcmder
package cozeproxcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/cozeprox/cmd/cozeprox/chat"
	configcmder "github.com/papercomputeco/cozeprox/cmd/cozeprox/config"
	servecmder "github.com/papercomputeco/cozeprox/cmd/cozeprox/serve"
	versioncmder "github.com/papercomputeco/cozeprox/cmd/version"
	"github.com/papercomputeco/cozeprox/pkg/config"
)

const cozeproxLongDesc string = `cozeprox relays chat messages to a Coze bot.

Run the HTTP server or talk to the bot directly:
  cozeprox serve           Run the HTTP server (POST /chat)
  cozeprox chat [message]  Chat with the bot from the terminal
  cozeprox config show     Print the effective configuration`

const cozeproxShortDesc string = "cozeprox - Coze chat relay"

func NewCozeproxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cozeprox",
		Short:        cozeproxShortDesc,
		Long:         cozeproxLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(config.DebugFlag, "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP(config.ConfigFileFlag, "c", "", "Path to a TOML config file")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
