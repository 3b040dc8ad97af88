package commands

import (
	"github.com/spf13/cobra"
)

// Version should be set during build
var Version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd runs the terminal widget when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "ftxwidget",
	Short: "Terminal widget for FTX markets, balances and conversions",
	Long: `A terminal widget for an FTX account.

Browse perpetual markets with a 7 day chart, see account balances valued in
USD, and convert between currencies with a confirmable quote.

Market data works without an account. Set FTXWIDGET_API_KEY and
FTXWIDGET_API_SECRET, or add them to the configuration file, to connect.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default ~/.ftxwidget.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}
