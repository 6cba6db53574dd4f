package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/caikaidev/CoinCow/internal/cache"
	"github.com/caikaidev/CoinCow/internal/infra"
	"github.com/caikaidev/CoinCow/internal/prefs"
	"github.com/caikaidev/CoinCow/internal/remote"
	"github.com/caikaidev/CoinCow/internal/repository"
	"github.com/caikaidev/CoinCow/internal/storage"
	"github.com/caikaidev/CoinCow/internal/syncer"
	"github.com/caikaidev/CoinCow/internal/validator"
)

// Bootstrap orchestrates the application startup sequence: config, logger,
// store, and the fully wired repository.
type Bootstrap struct {
	Config    *infra.Config
	Store     storage.Store
	Network   infra.NetworkMonitor
	Repo      *repository.Repository
	Watchlist *prefs.FileWatchlist
	Syncer    *syncer.Syncer
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the config, installs the logger, opens the cache store
// and wires the repository stack.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping CoinCow",
		slog.String("version", cfg.App.Version),
		slog.String("api", cfg.API.BaseURL))

	if err := infra.EnsureDir(filepath.Dir(cfg.Cache.DBPath)); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Cache.DBPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Cache store initialized (WAL-mode)", slog.String("path", cfg.Cache.DBPath))

	b.Network = infra.NewProbeMonitor(cfg.API.BaseURL + "/ping")

	limiter := infra.NewRateLimiter(cfg.MinRequestInterval(), cfg.RateLimitCooldown())
	breaker := infra.DefaultBreaker("coingecko")
	client := remote.NewClient(cfg, limiter, breaker)

	policy := cache.NewPolicy(cache.Windows{
		MarketData:   time.Duration(cfg.Cache.MarketExpirySec) * time.Second,
		CoinDetails:  time.Duration(cfg.Cache.DetailsExpirySec) * time.Second,
		PriceHistory: time.Duration(cfg.Cache.HistoryExpirySec) * time.Second,
		Search:       time.Duration(cfg.Cache.SearchExpirySec) * time.Second,
	})

	verifier := validator.New(validator.Thresholds{
		ZeroPriceRatio:   cfg.Integrity.ZeroPriceRatio,
		MaxChangePercent: cfg.Integrity.MaxChangePercent,
		OutlierRatio:     cfg.Integrity.OutlierRatio,
	})

	retryCfg := infra.RetryConfig{
		MaxAttempts:       cfg.API.MaxRetryAttempts,
		BaseDelay:         cfg.RetryBaseDelay(),
		RateLimitCooldown: cfg.RateLimitCooldown(),
	}

	b.Repo = repository.New(client, store, policy, b.Network, verifier, retryCfg)
	b.Watchlist = prefs.NewFileWatchlist(cfg.Sync.WatchlistPath)
	b.Syncer = syncer.New(b.Repo, store, b.Network, b.Watchlist,
		cfg.Sync.Currency, cfg.SyncInterval(), cfg.CacheRetention())

	return nil
}

// Close releases the store. Safe to call after a failed Initialize.
func (b *Bootstrap) Close() {
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("cache store close failed", slog.String("error", err.Error()))
		}
	}
}
