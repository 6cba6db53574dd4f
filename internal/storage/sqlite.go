package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caikaidev/CoinCow/internal/domain"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore persists cache records in a single SQLite file. Payloads are
// stored as JSON blobs next to their write timestamp, one table per record
// kind. WAL mode keeps concurrent readers off the writer's back.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the cache database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS market_data (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			market_cap_rank INTEGER,
			cached_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS coin_details (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			cached_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS price_history (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			cached_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetAllMarketData(ctx context.Context) ([]CachedMarketData, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, cached_at FROM market_data
		 ORDER BY market_cap_rank IS NULL, market_cap_rank ASC`)
	if err != nil {
		return nil, fmt.Errorf("query market data: %w", err)
	}
	defer rows.Close()

	return scanMarketRows(rows)
}

func (s *SQLiteStore) GetMarketDataByIDs(ctx context.Context, ids []string) ([]CachedMarketData, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, cached_at FROM market_data WHERE id IN (`+placeholders+`)
		 ORDER BY market_cap_rank IS NULL, market_cap_rank ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query market data by ids: %w", err)
	}
	defer rows.Close()

	return scanMarketRows(rows)
}

func scanMarketRows(rows *sql.Rows) ([]CachedMarketData, error) {
	var out []CachedMarketData
	for rows.Next() {
		var payload []byte
		var cachedAt int64
		if err := rows.Scan(&payload, &cachedAt); err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		var coin domain.CoinMarketData
		if err := json.Unmarshal(payload, &coin); err != nil {
			return nil, fmt.Errorf("decode market payload: %w", err)
		}
		out = append(out, CachedMarketData{Coin: coin, CachedAt: cachedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) PutMarketData(ctx context.Context, coins []domain.CoinMarketData, cachedAt int64) error {
	if len(coins) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin market upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO market_data (id, payload, market_cap_rank, cached_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			payload=excluded.payload,
			market_cap_rank=excluded.market_cap_rank,
			cached_at=excluded.cached_at`)
	if err != nil {
		return fmt.Errorf("prepare market upsert: %w", err)
	}
	defer stmt.Close()

	for _, coin := range coins {
		payload, err := json.Marshal(coin)
		if err != nil {
			return fmt.Errorf("encode market payload %s: %w", coin.ID, err)
		}
		var rank any
		if coin.MarketCapRank != nil {
			rank = *coin.MarketCapRank
		}
		if _, err := stmt.ExecContext(ctx, coin.ID, payload, rank, cachedAt); err != nil {
			return fmt.Errorf("upsert market %s: %w", coin.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LatestMarketWrite(ctx context.Context) (int64, error) {
	var latest sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(cached_at) FROM market_data").Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("latest market write: %w", err)
	}
	if !latest.Valid {
		return 0, nil
	}
	return latest.Int64, nil
}

func (s *SQLiteStore) GetCoinDetails(ctx context.Context, coinID string) (*CachedCoinDetails, error) {
	var payload []byte
	var cachedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, cached_at FROM coin_details WHERE id = ?", coinID).
		Scan(&payload, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query coin details: %w", err)
	}

	var details domain.CoinDetails
	if err := json.Unmarshal(payload, &details); err != nil {
		return nil, fmt.Errorf("decode details payload: %w", err)
	}
	return &CachedCoinDetails{Details: details, CachedAt: cachedAt}, nil
}

func (s *SQLiteStore) PutCoinDetails(ctx context.Context, details domain.CoinDetails, cachedAt int64) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode details payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO coin_details (id, payload, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload=excluded.payload, cached_at=excluded.cached_at`,
		details.ID, payload, cachedAt)
	if err != nil {
		return fmt.Errorf("upsert details %s: %w", details.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetPriceHistory(ctx context.Context, cacheKey string) (*CachedPriceHistory, error) {
	var payload []byte
	var cachedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, cached_at FROM price_history WHERE cache_key = ?", cacheKey).
		Scan(&payload, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}

	var history domain.CoinPriceHistory
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, fmt.Errorf("decode history payload: %w", err)
	}
	return &CachedPriceHistory{History: history, CachedAt: cachedAt}, nil
}

func (s *SQLiteStore) PutPriceHistory(ctx context.Context, history domain.CoinPriceHistory, cachedAt int64) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO price_history (cache_key, payload, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload=excluded.payload, cached_at=excluded.cached_at`,
		history.CacheKey(), payload, cachedAt)
	if err != nil {
		return fmt.Errorf("upsert history %s: %w", history.CacheKey(), err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, olderThan int64) error {
	for _, table := range []string{"market_data", "coin_details", "price_history"} {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE cached_at < ?", olderThan); err != nil {
			return fmt.Errorf("delete expired from %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ClearMarketData(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM market_data")
	return err
}

func (s *SQLiteStore) ClearCoinDetails(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coin_details")
	return err
}

func (s *SQLiteStore) ClearPriceHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM price_history")
	return err
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if err := s.ClearMarketData(ctx); err != nil {
		return err
	}
	if err := s.ClearCoinDetails(ctx); err != nil {
		return err
	}
	return s.ClearPriceHistory(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
