package domain

import (
	"fmt"
	"math"
)

// PricePoint is a single (timestamp, price) sample of a series.
// Timestamps are epoch milliseconds as delivered by the upstream chart API.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// IsValid reports whether the point can be charted at all.
func (p PricePoint) IsValid() bool {
	return p.Timestamp > 0 && p.Price > 0 && !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}

// CoinPriceHistory is a price series for one (coin, currency, window) key.
type CoinPriceHistory struct {
	CoinID       string       `json:"coin_id"`
	Currency     string       `json:"currency"`
	Days         string       `json:"days"`
	Prices       []PricePoint `json:"prices"`
	MarketCaps   []PricePoint `json:"market_caps,omitempty"`
	TotalVolumes []PricePoint `json:"total_volumes,omitempty"`
}

// HistoryCacheKey builds the composite store key for a price series.
func HistoryCacheKey(coinID, currency, days string) string {
	return fmt.Sprintf("%s_%s_%s", coinID, currency, days)
}

// CacheKey returns the composite store key of this series.
func (h CoinPriceHistory) CacheKey() string {
	return HistoryCacheKey(h.CoinID, h.Currency, h.Days)
}

// ValidPrices returns the subset of points that pass point-level validity.
func (h CoinPriceHistory) ValidPrices() []PricePoint {
	out := make([]PricePoint, 0, len(h.Prices))
	for _, p := range h.Prices {
		if p.IsValid() {
			out = append(out, p)
		}
	}
	return out
}

// PriceChangePercentage returns the change over the whole window, or false
// when fewer than two valid points exist.
func (h CoinPriceHistory) PriceChangePercentage() (float64, bool) {
	valid := h.ValidPrices()
	if len(valid) < 2 {
		return 0, false
	}
	first := valid[0].Price
	last := valid[len(valid)-1].Price
	return ((last - first) / first) * 100, true
}

// HighestPrice returns the maximum valid price in the window.
func (h CoinPriceHistory) HighestPrice() (float64, bool) {
	valid := h.ValidPrices()
	if len(valid) == 0 {
		return 0, false
	}
	max := valid[0].Price
	for _, p := range valid[1:] {
		if p.Price > max {
			max = p.Price
		}
	}
	return max, true
}

// LowestPrice returns the minimum valid price in the window.
func (h CoinPriceHistory) LowestPrice() (float64, bool) {
	valid := h.ValidPrices()
	if len(valid) == 0 {
		return 0, false
	}
	min := valid[0].Price
	for _, p := range valid[1:] {
		if p.Price < min {
			min = p.Price
		}
	}
	return min, true
}
