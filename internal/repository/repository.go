package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/caikaidev/CoinCow/internal/cache"
	"github.com/caikaidev/CoinCow/internal/domain"
	"github.com/caikaidev/CoinCow/internal/infra"
	"github.com/caikaidev/CoinCow/internal/storage"
	"github.com/caikaidev/CoinCow/internal/validator"
)

// DataSource is the remote side of the repository. Implementations return
// classified *domain.Failure errors so the retry layer can act on kind.
type DataSource interface {
	MarketData(ctx context.Context, currency string, ids []string, perPage, page int) ([]domain.CoinMarketData, error)
	CoinDetails(ctx context.Context, coinID string) (*domain.CoinDetails, error)
	PriceHistory(ctx context.Context, coinID, currency, days string) (*domain.CoinPriceHistory, error)
	Search(ctx context.Context, query string) ([]domain.SearchCoin, error)
}

// Repository is the cache-first sync orchestrator. Every read follows the
// same shape: consult the cache, decide freshness against the policy and
// current network quality, fetch over the data source when needed, sanitize
// and persist what came back, and fall back to stale cache when the network
// lets us down. Search is the one exception: it is never cached and never
// falls back.
type Repository struct {
	source   DataSource
	store    storage.Store
	policy   *cache.Policy
	network  infra.NetworkMonitor
	verifier *validator.Validator
	retryCfg infra.RetryConfig
	flights  flightGroup
	now      func() time.Time
}

func New(source DataSource, store storage.Store, policy *cache.Policy, network infra.NetworkMonitor, verifier *validator.Validator, retryCfg infra.RetryConfig) *Repository {
	return &Repository{
		source:   source,
		store:    store,
		policy:   policy,
		network:  network,
		verifier: verifier,
		retryCfg: retryCfg,
		now:      time.Now,
	}
}

// GetMarketData returns the bulk market listing, serving cache while fresh
// and refreshing over the network otherwise. forceRefresh skips the
// freshness check but still falls back to stale cache on failure.
func (r *Repository) GetMarketData(ctx context.Context, currency string, forceRefresh bool) ([]domain.CoinMarketData, error) {
	cached, err := r.store.GetAllMarketData(ctx)
	if err != nil {
		return nil, err
	}
	quality := r.network.Quality()

	if !forceRefresh && len(cached) > 0 && r.cacheUsable(cache.CategoryMarketData, quality, cached) {
		return unwrapMarket(cached), nil
	}

	if !r.network.IsConnected() {
		if len(cached) > 0 {
			slog.Info("offline, serving cached market data", slog.Int("coins", len(cached)))
			return unwrapMarket(cached), nil
		}
		return nil, domain.NewFailure(domain.FailureNoData, "offline with no cached market data", nil)
	}

	perPage := r.policy.BatchSize(cache.CategoryMarketData, quality)
	fresh, err := inFlight(ctx, &r.flights, "markets:"+currency, func() ([]domain.CoinMarketData, error) {
		return infra.Retry(ctx, r.retryCfg, func(ctx context.Context) ([]domain.CoinMarketData, error) {
			return r.source.MarketData(ctx, currency, nil, perPage, 1)
		})
	})
	if err != nil {
		if len(cached) > 0 {
			slog.Warn("market fetch failed, falling back to stale cache",
				slog.String("error", err.Error()), slog.Int("coins", len(cached)))
			return unwrapMarket(cached), nil
		}
		return nil, err
	}

	fresh = r.acceptMarketData(ctx, fresh)
	return fresh, nil
}

// GetWatchlistMarketData returns market records for the given ids, in the
// given order. Ids absent upstream are dropped without error. An empty
// watchlist short-circuits to an empty result with no network traffic.
func (r *Repository) GetWatchlistMarketData(ctx context.Context, coinIDs []string, currency string, forceRefresh bool) ([]domain.CoinMarketData, error) {
	if len(coinIDs) == 0 {
		return []domain.CoinMarketData{}, nil
	}

	cached, err := r.store.GetMarketDataByIDs(ctx, coinIDs)
	if err != nil {
		return nil, err
	}
	quality := r.network.Quality()

	if !forceRefresh && len(cached) == len(coinIDs) && r.cacheUsable(cache.CategoryMarketData, quality, cached) {
		return reorder(coinIDs, unwrapMarket(cached)), nil
	}

	if !r.network.IsConnected() {
		if len(cached) > 0 {
			return reorder(coinIDs, unwrapMarket(cached)), nil
		}
		return nil, domain.NewFailure(domain.FailureNoData, "offline with no cached watchlist data", nil)
	}

	key := "watchlist:" + currency + ":" + strings.Join(coinIDs, ",")
	fresh, err := inFlight(ctx, &r.flights, key, func() ([]domain.CoinMarketData, error) {
		return infra.Retry(ctx, r.retryCfg, func(ctx context.Context) ([]domain.CoinMarketData, error) {
			return r.source.MarketData(ctx, currency, coinIDs, len(coinIDs), 1)
		})
	})
	if err != nil {
		if len(cached) > 0 {
			slog.Warn("watchlist fetch failed, falling back to stale cache",
				slog.String("error", err.Error()))
			return reorder(coinIDs, unwrapMarket(cached)), nil
		}
		return nil, err
	}

	fresh = r.acceptMarketData(ctx, fresh)
	return reorder(coinIDs, fresh), nil
}

// GetCoinDetails returns the detail record for one coin.
func (r *Repository) GetCoinDetails(ctx context.Context, coinID string, forceRefresh bool) (*domain.CoinDetails, error) {
	cached, err := r.store.GetCoinDetails(ctx, coinID)
	if err != nil {
		return nil, err
	}
	quality := r.network.Quality()

	if !forceRefresh && cached != nil && r.policy.IsUsable(cache.CategoryCoinDetails, quality, r.age(cached.CachedAt)) {
		return &cached.Details, nil
	}

	if !r.network.IsConnected() {
		if cached != nil {
			return &cached.Details, nil
		}
		return nil, domain.NewFailure(domain.FailureNoData, "offline with no cached details for "+coinID, nil)
	}

	fresh, err := inFlight(ctx, &r.flights, "details:"+coinID, func() (*domain.CoinDetails, error) {
		return infra.Retry(ctx, r.retryCfg, func(ctx context.Context) (*domain.CoinDetails, error) {
			return r.source.CoinDetails(ctx, coinID)
		})
	})
	if err != nil {
		if cached != nil {
			slog.Warn("detail fetch failed, falling back to stale cache",
				slog.String("coin", coinID), slog.String("error", err.Error()))
			return &cached.Details, nil
		}
		return nil, err
	}

	if perr := r.store.PutCoinDetails(ctx, *fresh, r.nowMillis()); perr != nil {
		slog.Error("failed to persist coin details", slog.String("coin", coinID), slog.String("error", perr.Error()))
	}
	return fresh, nil
}

// GetCoinPriceHistory returns the chart series for (coin, currency, days).
// The series is sanitized before it is persisted or returned: invalid points
// dropped, timestamps deduplicated and sorted, outliers filtered.
func (r *Repository) GetCoinPriceHistory(ctx context.Context, coinID, currency, days string, forceRefresh bool) (*domain.CoinPriceHistory, error) {
	key := domain.HistoryCacheKey(coinID, currency, days)
	cached, err := r.store.GetPriceHistory(ctx, key)
	if err != nil {
		return nil, err
	}
	quality := r.network.Quality()

	if !forceRefresh && cached != nil && r.policy.IsUsable(cache.CategoryPriceHistory, quality, r.age(cached.CachedAt)) {
		return &cached.History, nil
	}

	if !r.network.IsConnected() {
		if cached != nil {
			return &cached.History, nil
		}
		return nil, domain.NewFailure(domain.FailureNoData, "offline with no cached history for "+key, nil)
	}

	fresh, err := inFlight(ctx, &r.flights, "history:"+key, func() (*domain.CoinPriceHistory, error) {
		return infra.Retry(ctx, r.retryCfg, func(ctx context.Context) (*domain.CoinPriceHistory, error) {
			return r.source.PriceHistory(ctx, coinID, currency, days)
		})
	})
	if err != nil {
		if cached != nil {
			slog.Warn("history fetch failed, falling back to stale cache",
				slog.String("key", key), slog.String("error", err.Error()))
			return &cached.History, nil
		}
		return nil, err
	}

	clean := r.verifier.SanitizePriceHistory(*fresh)
	if perr := r.store.PutPriceHistory(ctx, clean, r.nowMillis()); perr != nil {
		slog.Error("failed to persist price history", slog.String("key", key), slog.String("error", perr.Error()))
	}
	return &clean, nil
}

// SearchCoins runs an uncached search. There is nothing to fall back to:
// offline or failed searches surface as errors.
func (r *Repository) SearchCoins(ctx context.Context, query string) ([]domain.SearchCoin, error) {
	if !r.network.IsConnected() {
		return nil, domain.NewFailure(domain.FailureConnectivity, "search requires a network connection", nil)
	}

	return inFlight(ctx, &r.flights, "search:"+query, func() ([]domain.SearchCoin, error) {
		return infra.Retry(ctx, r.retryCfg, func(ctx context.Context) ([]domain.SearchCoin, error) {
			return r.source.Search(ctx, query)
		})
	})
}

// ClearCache wipes every cached record kind.
func (r *Repository) ClearCache(ctx context.Context) error {
	slog.Info("clearing all cached data")
	return r.store.ClearAll(ctx)
}

// IsCacheValid reports whether the newest cached write of the category is
// still inside its expiry window. Key-addressed categories (details,
// history) have no single representative record, so only the bulk market
// category and the never-expiring preference category answer meaningfully;
// the rest report false.
func (r *Repository) IsCacheValid(ctx context.Context, category cache.Category) (bool, error) {
	switch category {
	case cache.CategoryUserPreferences:
		return true, nil
	case cache.CategoryMarketData:
		latest, err := r.store.LatestMarketWrite(ctx)
		if err != nil {
			return false, err
		}
		if latest == 0 {
			return false, nil
		}
		return r.policy.IsUsable(category, r.network.Quality(), r.age(latest)), nil
	default:
		return false, nil
	}
}

// acceptMarketData sanitizes a fetched batch and persists it. A batch that
// trips the corruption heuristics is logged but still stored: the sanitized
// records are the best data available and the next refresh supersedes them.
func (r *Repository) acceptMarketData(ctx context.Context, coins []domain.CoinMarketData) []domain.CoinMarketData {
	if r.verifier.DetectResponseCorruption(coins) {
		slog.Warn("market response failed integrity checks", slog.Int("coins", len(coins)))
	}
	clean := make([]domain.CoinMarketData, len(coins))
	for i, c := range coins {
		clean[i] = r.verifier.SanitizeMarketData(c)
	}
	if err := r.store.PutMarketData(ctx, clean, r.nowMillis()); err != nil {
		slog.Error("failed to persist market data", slog.String("error", err.Error()))
	}
	return clean
}

// cacheUsable reports whether every record in the batch is inside its
// expiry window. Per-record judgment: one stale entry invalidates the batch.
func (r *Repository) cacheUsable(category cache.Category, quality infra.NetworkQuality, records []storage.CachedMarketData) bool {
	for _, rec := range records {
		if !r.policy.IsUsable(category, quality, r.age(rec.CachedAt)) {
			return false
		}
	}
	return true
}

func (r *Repository) nowMillis() int64 {
	return r.now().UnixMilli()
}

func (r *Repository) age(cachedAt int64) time.Duration {
	return r.now().Sub(time.UnixMilli(cachedAt))
}

func unwrapMarket(records []storage.CachedMarketData) []domain.CoinMarketData {
	coins := make([]domain.CoinMarketData, len(records))
	for i, rec := range records {
		coins[i] = rec.Coin
	}
	return coins
}

// reorder arranges coins to match the requested id order, dropping ids the
// result does not contain.
func reorder(ids []string, coins []domain.CoinMarketData) []domain.CoinMarketData {
	byID := make(map[string]domain.CoinMarketData, len(coins))
	for _, c := range coins {
		byID[c.ID] = c
	}
	ordered := make([]domain.CoinMarketData, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
