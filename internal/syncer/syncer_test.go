package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caikaidev/CoinCow/internal/cache"
	"github.com/caikaidev/CoinCow/internal/domain"
	"github.com/caikaidev/CoinCow/internal/infra"
	"github.com/caikaidev/CoinCow/internal/prefs"
	"github.com/caikaidev/CoinCow/internal/repository"
	"github.com/caikaidev/CoinCow/internal/storage"
	"github.com/caikaidev/CoinCow/internal/validator"
)

type countingSource struct {
	marketCalls atomic.Int32
}

func (s *countingSource) MarketData(ctx context.Context, currency string, ids []string, perPage, page int) ([]domain.CoinMarketData, error) {
	s.marketCalls.Add(1)
	if len(ids) > 0 {
		coins := make([]domain.CoinMarketData, len(ids))
		for i, id := range ids {
			coins[i] = domain.CoinMarketData{ID: id, Name: id, Symbol: id, CurrentPrice: 1}
		}
		return coins, nil
	}
	return []domain.CoinMarketData{{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 50000}}, nil
}

func (s *countingSource) CoinDetails(ctx context.Context, coinID string) (*domain.CoinDetails, error) {
	return &domain.CoinDetails{ID: coinID}, nil
}

func (s *countingSource) PriceHistory(ctx context.Context, coinID, currency, days string) (*domain.CoinPriceHistory, error) {
	return &domain.CoinPriceHistory{CoinID: coinID, Currency: currency, Days: days}, nil
}

func (s *countingSource) Search(ctx context.Context, query string) ([]domain.SearchCoin, error) {
	return nil, nil
}

func newTestSyncer(source repository.DataSource, monitor infra.NetworkMonitor, watchlist prefs.WatchlistSource, retention time.Duration) (*Syncer, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	repo := repository.New(source, store, cache.NewPolicy(cache.DefaultWindows()), monitor,
		validator.New(validator.DefaultThresholds()),
		infra.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, RateLimitCooldown: time.Millisecond})
	return New(repo, store, monitor, watchlist, "usd", 10*time.Millisecond, retention), store
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSyncer_WarmsCacheAndStops(t *testing.T) {
	source := &countingSource{}
	s, store := newTestSyncer(source, infra.NewStaticMonitor(infra.QualityFast), prefs.StaticWatchlist{"aave"}, 0)

	s.Start(context.Background())
	waitFor(t, func() bool {
		records, err := store.GetAllMarketData(context.Background())
		return err == nil && len(records) >= 2
	}, "cache never warmed with market + watchlist data")
	s.Stop()

	after := source.marketCalls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := source.marketCalls.Load(); got != after {
		t.Errorf("cycles continued after Stop: %d -> %d", after, got)
	}
}

func TestSyncer_SkipsCyclesWhileOffline(t *testing.T) {
	source := &countingSource{}
	s, _ := newTestSyncer(source, infra.NewStaticMonitor(infra.QualityNone), prefs.StaticWatchlist{}, 0)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if got := source.marketCalls.Load(); got != 0 {
		t.Errorf("offline cycles must not hit the network, got %d calls", got)
	}
}

func TestSyncer_SweepsExpiredRecords(t *testing.T) {
	source := &countingSource{}
	s, store := newTestSyncer(source, infra.NewStaticMonitor(infra.QualityFast), prefs.StaticWatchlist{}, time.Hour)

	ctx := context.Background()
	stale := time.Now().Add(-2 * time.Hour).UnixMilli()
	if err := store.PutPriceHistory(ctx, domain.CoinPriceHistory{CoinID: "old", Currency: "usd", Days: "7"}, stale); err != nil {
		t.Fatal(err)
	}

	s.Start(ctx)
	waitFor(t, func() bool {
		rec, err := store.GetPriceHistory(ctx, domain.HistoryCacheKey("old", "usd", "7"))
		return err == nil && rec == nil
	}, "expired history record never swept")
	s.Stop()
}
