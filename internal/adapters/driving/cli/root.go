// Package cli provides the cardfill command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/logger"
)

var (
	version = "dev"

	verbose   bool
	logLevel  string
	configDir string
	dataDir   string
	serverURL string
)

// skipServices marks commands that run without the service stack.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "cardfill",
	Short: "Resolve card queries and compose print projects",
	Long: `cardfill resolves card name queries against prioritised image sources
and lays the results out as a print project of front/back slots.

Sources are searched in the order set with 'cardfill sources set'. Images are
filtered by the DPI, size, language and tag settings in 'cardfill settings'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		if cmd.Annotations[skipServices] == "true" {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

// setup and teardown build and release the service stack. Tests replace them
// with stubs that install mocks.
var (
	setup    = wireServices
	teardown = closeServices
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "lowest level logged in verbose mode (debug, info, warn)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.cardfill)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.cardfill/data)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"search a remote image server at this URL instead of the local catalog")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
