// Package internal wires the desk client together: backend client, feed
// pollers, trade gate, intent journal and the local markets view.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkfrx/desk/config"
	"github.com/mkfrx/desk/internal/clients"
	"github.com/mkfrx/desk/internal/domain"
	"github.com/mkfrx/desk/internal/services/feed"
	"github.com/mkfrx/desk/internal/services/trade"
	"github.com/mkfrx/desk/internal/storage/intents"
	"github.com/mkfrx/desk/internal/web"
)

// App is one running desk client instance.
type App struct {
	Client *clients.MkfrxClient
	Cache  *feed.Cache
	Chart  *feed.ChartPoller

	cfg     config.Config
	server  *web.Server
	journal *intents.WALStore
	logger  *zap.Logger
}

// NewApp builds the full component graph for an authenticated session.
func NewApp(cfg config.Config, client *clients.MkfrxClient, session *domain.Session, logger *zap.Logger) (*App, error) {
	cache := feed.NewCache(client, logger)
	chart := feed.NewChartPoller(client, cfg.ChartSymbol, nil, logger)

	journal, err := intents.NewWALStore(cfg.JournalDir)
	if err != nil {
		return nil, errors.Wrap(err, "open intent journal")
	}

	gate := trade.NewGate(client, journal, logger)
	server := web.NewServer(cfg.ListenAddr, cache, chart, gate, client, journal, session, logger)

	return &App{
		Client:  client,
		Cache:   cache,
		Chart:   chart,
		cfg:     cfg,
		server:  server,
		journal: journal,
		logger:  logger,
	}, nil
}

// Run starts the two independent pollers and the view server, and blocks
// until ctx is cancelled or one of them fails. Cancelling ctx tears down the
// poll timers, so no refresh fires after the view is gone.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Cache.Run(ctx, a.cfg.PollInterval) })
	g.Go(func() error { return a.Chart.Run(ctx, a.cfg.ChartPollInterval) })
	g.Go(func() error { return a.server.Start(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the journal.
func (a *App) Close() {
	if err := a.journal.Close(); err != nil {
		a.logger.Warn("failed to close intent journal", zap.Error(err))
	}
}
