package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/cautious/internal/app"
	"github.com/YoshitsuguKoike/cautious/internal/app/config"
	"github.com/YoshitsuguKoike/cautious/internal/buildinfo"
	infraConfig "github.com/YoshitsuguKoike/cautious/internal/infra/config"
	"github.com/YoshitsuguKoike/cautious/internal/infrastructure/di"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/textenc"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	home        string
	debug       bool
	stderrLevel string
}

func NewRoot() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "cautious",
		Short: "Lock-guarded file access",
		Long: `cautious reads and writes files under an advisory lock.

Each operation creates "<path>.lock" exclusively, retries while another
process holds it, and removes it when done.`,
		Version:      buildinfo.GetVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs
			// Priority: ENV > setting.yaml > defaults
			cfg, err := infraConfig.LoadSettings(app.ResolveHome(flags.home))
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			globalConfig = cfg

			level := cfg.StderrLevel()
			if flags.stderrLevel != "" {
				level = flags.stderrLevel
			}
			if flags.debug || cfg.Debug() {
				level = "debug"
				origin.SetDebug(true)
			}
			InitGlobalLogger(level, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().StringVar(&flags.home, "home", "", "directory holding setting.yaml (default $CAUTIOUS_HOME or .cautious)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "debug logging and stack traces on errors")
	cmd.PersistentFlags().StringVar(&flags.stderrLevel, "stderr-level", "", "stderr log level: debug, info, warn, error")

	cmd.AddCommand(newWriteCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newSizeCmd())
	cmd.AddCommand(newLockCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// initializeContainer builds the DI container from the loaded configuration.
// It creates the process lock coordinator, so it runs at most once per process.
func initializeContainer() (*di.Container, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	container, err := di.NewContainer(di.Config{
		Settings: globalConfig,
		Logger:   GetLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return container, nil
}

// resolveEncoding returns the encoding named by flag, or the configured default
func resolveEncoding(flag string) (textenc.Encoding, error) {
	name := flag
	if name == "" && globalConfig != nil {
		name = globalConfig.Encoding()
	}
	return textenc.Lookup(name)
}
