package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/cozeprox/pkg/config"
)

const initLongDesc string = `Write a config file holding the default configuration.

The file is created with owner-only permissions. An existing file is never
overwritten.

Examples:
  cozeprox config init cozeprox.toml`

const initShortDesc string = "Write a default config file"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteFile(args[0], config.NewDefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}

	return cmd
}
