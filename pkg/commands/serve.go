package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/server"
	"ftxwidget/pkg/widget"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the widget headless behind an HTTP and WebSocket API",
	Long: `Run the widget without a terminal UI.

Endpoints:
• GET  /api/health   liveness
• GET  /api/state    current state snapshot
• POST /api/actions  dispatch an action {"type": ..., "payload": ...}
• GET  /ws           live state stream; accepts actions in the same shape

Quote expiry is enforced server side.

Examples:
  ftxwidget serve                 # Listen on :8080
  ftxwidget serve --port 9090     # Listen on a custom port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "API server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, path, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.WithField("config", path).Info("Configuration loaded")

	a := newApp(ctx, cfg, log, nil)
	defer a.Close()

	a.store.Start(ctx)
	go a.store.RunCountdown(ctx, time.Second)
	a.store.Dispatch(widget.Initialize{})

	srv := server.NewServer(a.store, logger.WithComponent(log, "server"))
	if err := srv.Start(ctx, servePort); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
