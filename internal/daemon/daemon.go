// Package daemon assembles the casino process: store, seed rotation,
// casino service and HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/pf-casino-engine/internal/api"
	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/config"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
	"github.com/MJE43/pf-casino-engine/internal/store"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Daemon owns every long-lived component.
type Daemon struct {
	db       *store.SQLiteDB
	seeds    *seeds.Store
	casino   *casino.Service
	http     *http.Server
	listener net.Listener
	logger   *slog.Logger
}

// New opens the database, activates the current seed and binds the HTTP
// listener. Nothing is served until Run.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *Daemon, err error) {
	db, err := store.Open(ctx, cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, db.Close())
		}
	}()

	seedStore := seeds.NewStore(db,
		seeds.WithPeriod(cfg.SeedPeriod),
		seeds.WithDisclosure(cfg.DisclosureMode()),
		seeds.WithLogger(logger),
	)
	if _, _, err := seedStore.Rotate(ctx); err != nil {
		return nil, fmt.Errorf("activate seed: %w", err)
	}

	svc := casino.NewService(casino.Deps{
		Ledger:   db,
		Wagers:   db,
		Usage:    db,
		States:   db,
		Drawer:   fair.NewAdvancingDrawer(fair.NewGenerator(seedStore, db)),
		Timeouts: cfg.Timeouts.ByVariant(),
		Logger:   logger,
	})

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	srv := api.NewServer(api.Deps{
		Casino:   svc,
		Seeds:    seedStore,
		Players:  db,
		Logger:   logger,
		APIToken: cfg.APIToken,
	})
	return &Daemon{
		db:     db,
		seeds:  seedStore,
		casino: svc,
		http: &http.Server{
			Handler:           srv.Routes(),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		listener: ln,
		logger:   logger,
	}, nil
}

// Addr is the bound HTTP address.
func (d *Daemon) Addr() net.Addr { return d.listener.Addr() }

// Run serves HTTP and rotates seeds until ctx is done or either fails,
// then shuts down and releases everything.
func (d *Daemon) Run(ctx context.Context) (err error) {
	defer func() {
		d.casino.Close()
		err = multierr.Append(err, d.db.Close())
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.seeds.Run(gctx)
	})
	g.Go(func() error {
		d.logger.Info("http server listening", "addr", d.Addr().String())
		if err := d.http.Serve(d.listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		d.logger.Info("shutting down", "active_sessions", d.casino.Registry().Len())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return d.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
