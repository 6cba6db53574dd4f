package storage

import (
	"context"

	"github.com/caikaidev/CoinCow/internal/domain"
)

// Cached* wrap a payload with its write timestamp (epoch milliseconds).
// Records are superseded wholesale on every successful fetch, never merged;
// freshness judgment belongs to the cache policy, not the store.

type CachedMarketData struct {
	Coin     domain.CoinMarketData
	CachedAt int64
}

type CachedCoinDetails struct {
	Details  domain.CoinDetails
	CachedAt int64
}

type CachedPriceHistory struct {
	History  domain.CoinPriceHistory
	CachedAt int64
}

// Store is the key-addressed persistent cache of the three record kinds.
// Get variants never judge freshness and never error on missing keys:
// point lookups return nil, bulk lookups simply omit absent keys.
// Puts are idempotent upserts where the last write wins, timestamp included.
type Store interface {
	// Market snapshots, keyed by coin id.
	GetAllMarketData(ctx context.Context) ([]CachedMarketData, error)
	GetMarketDataByIDs(ctx context.Context, ids []string) ([]CachedMarketData, error)
	PutMarketData(ctx context.Context, coins []domain.CoinMarketData, cachedAt int64) error
	LatestMarketWrite(ctx context.Context) (int64, error) // 0 when empty

	// Coin detail blobs, keyed by coin id.
	GetCoinDetails(ctx context.Context, coinID string) (*CachedCoinDetails, error)
	PutCoinDetails(ctx context.Context, details domain.CoinDetails, cachedAt int64) error

	// Price-history series, keyed by (coin, currency, window).
	GetPriceHistory(ctx context.Context, cacheKey string) (*CachedPriceHistory, error)
	PutPriceHistory(ctx context.Context, history domain.CoinPriceHistory, cachedAt int64) error

	// Housekeeping. DeleteExpired removes records strictly older than the
	// threshold across all kinds; Clear* wipe a kind or everything.
	DeleteExpired(ctx context.Context, olderThan int64) error
	ClearMarketData(ctx context.Context) error
	ClearCoinDetails(ctx context.Context) error
	ClearPriceHistory(ctx context.Context) error
	ClearAll(ctx context.Context) error

	Close() error
}
