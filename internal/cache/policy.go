package cache

import (
	"time"

	"github.com/caikaidev/CoinCow/internal/infra"
)

// Category is the unit of cache-policy configuration.
type Category int

const (
	CategoryMarketData Category = iota
	CategoryCoinDetails
	CategoryPriceHistory
	CategorySearch // configured for completeness; search results are never cached
	CategoryUserPreferences
)

func (c Category) String() string {
	switch c {
	case CategoryMarketData:
		return "market_data"
	case CategoryCoinDetails:
		return "coin_details"
	case CategoryPriceHistory:
		return "price_history"
	case CategorySearch:
		return "search"
	default:
		return "user_preferences"
	}
}

// Windows holds the base expiry window per category.
type Windows struct {
	MarketData   time.Duration
	CoinDetails  time.Duration
	PriceHistory time.Duration
	Search       time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		MarketData:   60 * time.Second,
		CoinDetails:  5 * time.Minute,
		PriceHistory: 5 * time.Minute,
		Search:       10 * time.Minute,
	}
}

// Policy decides whether cached records are still usable and how to size
// fetches for the current link. Pure functions of (category, quality, age);
// it carries no mutable state.
type Policy struct {
	windows Windows
}

func NewPolicy(windows Windows) *Policy {
	return &Policy{windows: windows}
}

// neverExpires marks user preferences, which outlive any network condition.
const neverExpires = time.Duration(1<<63 - 1)

func (p *Policy) baseWindow(category Category) time.Duration {
	switch category {
	case CategoryMarketData:
		return p.windows.MarketData
	case CategoryCoinDetails:
		return p.windows.CoinDetails
	case CategoryPriceHistory:
		return p.windows.PriceHistory
	case CategorySearch:
		return p.windows.Search
	default:
		return neverExpires
	}
}

// ExpiryWindow returns the category's expiry window scaled to the link:
// a fast link halves it (fresh data is cheap), a metered link doubles it,
// a poor or absent link quadruples it so stale cache beats failing outright.
func (p *Policy) ExpiryWindow(category Category, quality infra.NetworkQuality) time.Duration {
	base := p.baseWindow(category)
	if base == neverExpires {
		return base
	}
	switch quality {
	case infra.QualityFast:
		return base / 2
	case infra.QualityMetered:
		return base * 2
	default: // poor or none
		return base * 4
	}
}

// IsUsable reports whether a cached record of the given age may be served
// without a network round trip. Offline, any age is trusted. Metered links
// get an extra leniency band of one more window.
func (p *Policy) IsUsable(category Category, quality infra.NetworkQuality, cacheAge time.Duration) bool {
	if quality == infra.QualityNone {
		return true
	}

	window := p.ExpiryWindow(category, quality)
	if cacheAge < window {
		return true
	}
	if quality == infra.QualityMetered && cacheAge < 2*window {
		return true
	}
	return false
}

// BatchSize suggests how many records a bulk fetch should request on the
// current link. Advisory only; nothing in the policy enforces it.
func (p *Policy) BatchSize(category Category, quality infra.NetworkQuality) int {
	var base int
	switch category {
	case CategoryMarketData:
		base = 50
	case CategoryCoinDetails:
		base = 10
	case CategoryPriceHistory:
		base = 5
	case CategorySearch:
		base = 20
	default:
		base = 1
	}

	switch quality {
	case infra.QualityFast:
		return base
	case infra.QualityMetered:
		return base / 2
	case infra.QualityPoor:
		return base / 4
	default:
		return 0
	}
}
