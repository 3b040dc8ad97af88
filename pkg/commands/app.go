package commands

import (
	"context"
	"fmt"

	"ftxwidget/pkg/cache"
	"ftxwidget/pkg/config"
	"ftxwidget/pkg/ftx"
	"ftxwidget/pkg/journal"
	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	"github.com/sirupsen/logrus"
)

// loadConfig reads the configuration file, then the environment, then the
// persistent flags.
func loadConfig(ctx context.Context) (config.Config, string, error) {
	path, err := config.GetConfigPath(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("error determining config path: %w", err)
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return config.Config{}, path, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, path, nil
}

// app is the wired widget: exchange client, optional market cache, store
// and optional journal.
type app struct {
	cfg     config.Config
	log     *logrus.Logger
	store   *store.Store
	closers []func()
}

// newApp builds the store for cfg. Redis and NATS are optional; when they
// are configured but unreachable the widget runs without them.
func newApp(ctx context.Context, cfg config.Config, log *logrus.Logger, navigator widget.Navigator) *app {
	a := &app{cfg: cfg, log: log}

	var exchange widget.Exchange = ftx.NewClient(cfg, logger.WithComponent(log, "ftx"))

	if cfg.Redis.Addr != "" {
		rdb, err := cache.Dial(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Market cache disabled")
		} else {
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			exchange = cache.NewMarketCache(exchange, rdb, cfg.CacheTTL(), logger.WithComponent(log, "cache"))
		}
	}

	effects := widget.NewEffects(exchange, navigator, logger.WithComponent(log, "effects"))
	a.store = store.New(
		widget.NewReducer(logger.WithComponent(log, "reducer")),
		effects,
		logger.WithComponent(log, "store"),
	)

	if cfg.NATS.URL != "" {
		nc, err := journal.Connect(cfg.NATS, logger.WithComponent(log, "journal"))
		if err != nil {
			log.WithError(err).Warn("Action journal disabled")
		} else {
			a.closers = append(a.closers, nc.Close)
			a.store.AddRecorder(journal.New(nc, cfg.NATS.Subject, logger.WithComponent(log, "journal")))
		}
	}

	return a
}

// Close stops the store and releases connections in reverse order.
func (a *app) Close() {
	a.store.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
