package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cozeprox/pkg/config"
)

const showLongDesc string = `Print the effective configuration as TOML.

The API key is redacted. The output is a valid config file, so it can be
saved and edited.

Examples:
  cozeprox config show
  COZE_BOT_ID=7411 cozeprox config show`

const showShortDesc string = "Print the effective configuration"

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd, nil)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runShow(cmd.OutOrStdout(), cfg)
		},
	}

	return cmd
}

func runShow(w io.Writer, cfg *config.Config) error {
	return cfg.Redacted().Encode(w)
}
