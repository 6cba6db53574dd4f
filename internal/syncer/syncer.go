package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/caikaidev/CoinCow/internal/infra"
	"github.com/caikaidev/CoinCow/internal/prefs"
	"github.com/caikaidev/CoinCow/internal/repository"
	"github.com/caikaidev/CoinCow/internal/storage"
)

// Syncer refreshes the cached market data on a fixed interval so interactive
// reads land on a warm cache. Each cycle force-refreshes the bulk listing and
// the watchlist, then sweeps expired records out of the store. Cycles are
// skipped while offline.
type Syncer struct {
	repo      *repository.Repository
	store     storage.Store
	network   infra.NetworkMonitor
	watchlist prefs.WatchlistSource

	currency  string
	interval  time.Duration
	retention time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(repo *repository.Repository, store storage.Store, network infra.NetworkMonitor, watchlist prefs.WatchlistSource, currency string, interval, retention time.Duration) *Syncer {
	return &Syncer{
		repo:      repo,
		store:     store,
		network:   network,
		watchlist: watchlist,
		currency:  currency,
		interval:  interval,
		retention: retention,
	}
}

// Start runs one immediate cycle, then keeps refreshing on the interval
// until the context is done or Stop is called.
func (s *Syncer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.runCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("background sync stopped")
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (s *Syncer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Syncer) runCycle(ctx context.Context) {
	if !s.network.IsConnected() {
		slog.Debug("skipping sync cycle while offline")
		return
	}

	start := time.Now()

	if _, err := s.repo.GetMarketData(ctx, s.currency, true); err != nil {
		slog.Warn("market data sync failed", slog.String("error", err.Error()))
	}

	ids, err := s.watchlist.Watchlist()
	if err != nil {
		slog.Warn("watchlist unavailable for sync", slog.String("error", err.Error()))
	} else if len(ids) > 0 {
		if _, err := s.repo.GetWatchlistMarketData(ctx, ids, s.currency, true); err != nil {
			slog.Warn("watchlist sync failed", slog.String("error", err.Error()))
		}
	}

	if s.retention > 0 {
		olderThan := time.Now().Add(-s.retention).UnixMilli()
		if err := s.store.DeleteExpired(ctx, olderThan); err != nil {
			slog.Warn("cache sweep failed", slog.String("error", err.Error()))
		}
	}

	if ctx.Err() == nil {
		slog.Info("sync cycle complete",
			slog.Duration("elapsed", time.Since(start)),
			slog.Int("watchlist", len(ids)))
	}
}
