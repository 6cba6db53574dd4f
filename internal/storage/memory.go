package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/caikaidev/CoinCow/internal/domain"
)

// MemoryStore is a map-backed Store for tests and ephemeral runs.
// Concurrent readers, serialized writers, last write wins.
type MemoryStore struct {
	mu      sync.RWMutex
	market  map[string]CachedMarketData
	details map[string]CachedCoinDetails
	history map[string]CachedPriceHistory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		market:  make(map[string]CachedMarketData),
		details: make(map[string]CachedCoinDetails),
		history: make(map[string]CachedPriceHistory),
	}
}

func (s *MemoryStore) GetAllMarketData(ctx context.Context) ([]CachedMarketData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CachedMarketData, 0, len(s.market))
	for _, rec := range s.market {
		out = append(out, rec)
	}
	sortByRank(out)
	return out, nil
}

func (s *MemoryStore) GetMarketDataByIDs(ctx context.Context, ids []string) ([]CachedMarketData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CachedMarketData, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.market[id]; ok {
			out = append(out, rec)
		}
	}
	sortByRank(out)
	return out, nil
}

func (s *MemoryStore) PutMarketData(ctx context.Context, coins []domain.CoinMarketData, cachedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, coin := range coins {
		s.market[coin.ID] = CachedMarketData{Coin: coin, CachedAt: cachedAt}
	}
	return nil
}

func (s *MemoryStore) LatestMarketWrite(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest int64
	for _, rec := range s.market {
		if rec.CachedAt > latest {
			latest = rec.CachedAt
		}
	}
	return latest, nil
}

func (s *MemoryStore) GetCoinDetails(ctx context.Context, coinID string) (*CachedCoinDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.details[coinID]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutCoinDetails(ctx context.Context, details domain.CoinDetails, cachedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details[details.ID] = CachedCoinDetails{Details: details, CachedAt: cachedAt}
	return nil
}

func (s *MemoryStore) GetPriceHistory(ctx context.Context, cacheKey string) (*CachedPriceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.history[cacheKey]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *MemoryStore) PutPriceHistory(ctx context.Context, history domain.CoinPriceHistory, cachedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[history.CacheKey()] = CachedPriceHistory{History: history, CachedAt: cachedAt}
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, olderThan int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.market {
		if rec.CachedAt < olderThan {
			delete(s.market, id)
		}
	}
	for id, rec := range s.details {
		if rec.CachedAt < olderThan {
			delete(s.details, id)
		}
	}
	for key, rec := range s.history {
		if rec.CachedAt < olderThan {
			delete(s.history, key)
		}
	}
	return nil
}

func (s *MemoryStore) ClearMarketData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market = make(map[string]CachedMarketData)
	return nil
}

func (s *MemoryStore) ClearCoinDetails(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = make(map[string]CachedCoinDetails)
	return nil
}

func (s *MemoryStore) ClearPriceHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string]CachedPriceHistory)
	return nil
}

func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.market = make(map[string]CachedMarketData)
	s.details = make(map[string]CachedCoinDetails)
	s.history = make(map[string]CachedPriceHistory)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// sortByRank orders records by market-cap rank, unranked coins last.
func sortByRank(recs []CachedMarketData) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].Coin.MarketCapRank, recs[j].Coin.MarketCapRank
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri < *rj
		}
	})
}
