package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/tui"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the terminal widget (default)",
	Long: `Start the terminal widget.

Logs are written to ftxwidget.log in the temporary directory unless the
configuration names a log file.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// The alt-screen owns the terminal.
	switch cfg.Logging.Output {
	case "", "stdout", "stderr":
		cfg.Logging.Output = filepath.Join(os.TempDir(), "ftxwidget.log")
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := newApp(ctx, cfg, log, tui.BrowserNavigator{})
	defer a.Close()

	a.store.Start(ctx)
	log.WithField("version", Version).Info("Starting widget")
	return tui.Start(a.store, cfg.Widget, Version)
}
