package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraConfig "github.com/YoshitsuguKoike/cautious/internal/infra/config"
)

// newConfigCmd prints the configuration after defaults and overrides
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration in setting.yaml form, after environment
overrides and defaults have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := infraConfig.Effective(globalConfig)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", globalConfig.ConfigSource())
			if path := globalConfig.SettingPath(); path != "" {
				fmt.Fprintf(out, "# file: %s\n", path)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
