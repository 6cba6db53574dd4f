package domain

import (
	"math"
	"testing"
)

func TestPricePoint_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		point PricePoint
		want  bool
	}{
		{"valid", PricePoint{Timestamp: 1700000000000, Price: 50000}, true},
		{"zero price", PricePoint{Timestamp: 1700000000000, Price: 0}, false},
		{"negative price", PricePoint{Timestamp: 1700000000000, Price: -1}, false},
		{"zero timestamp", PricePoint{Timestamp: 0, Price: 50000}, false},
		{"negative timestamp", PricePoint{Timestamp: -5, Price: 50000}, false},
		{"nan price", PricePoint{Timestamp: 1700000000000, Price: math.NaN()}, false},
		{"inf price", PricePoint{Timestamp: 1700000000000, Price: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryCacheKey(t *testing.T) {
	if got := HistoryCacheKey("bitcoin", "usd", "7"); got != "bitcoin_usd_7" {
		t.Errorf("HistoryCacheKey = %q", got)
	}

	h := CoinPriceHistory{CoinID: "ethereum", Currency: "eur", Days: "30"}
	if got := h.CacheKey(); got != "ethereum_eur_30" {
		t.Errorf("CacheKey = %q", got)
	}
}

func TestCoinPriceHistory_Aggregates(t *testing.T) {
	h := CoinPriceHistory{Prices: []PricePoint{
		{Timestamp: 100, Price: 200},
		{Timestamp: 200, Price: 0}, // skipped
		{Timestamp: 300, Price: 250},
		{Timestamp: 400, Price: 150},
		{Timestamp: 500, Price: 220},
	}}

	if high, ok := h.HighestPrice(); !ok || high != 250 {
		t.Errorf("HighestPrice = %v %v", high, ok)
	}
	if low, ok := h.LowestPrice(); !ok || low != 150 {
		t.Errorf("LowestPrice = %v %v", low, ok)
	}
	if change, ok := h.PriceChangePercentage(); !ok || change != 10 {
		t.Errorf("PriceChangePercentage = %v %v, want +10%%", change, ok)
	}
}

func TestCoinPriceHistory_AggregatesEmpty(t *testing.T) {
	h := CoinPriceHistory{Prices: []PricePoint{{Timestamp: 100, Price: 200}}}

	if _, ok := h.PriceChangePercentage(); ok {
		t.Error("one point is not enough for a change percentage")
	}

	empty := CoinPriceHistory{}
	if _, ok := empty.HighestPrice(); ok {
		t.Error("empty series has no highest price")
	}
	if _, ok := empty.LowestPrice(); ok {
		t.Error("empty series has no lowest price")
	}
}
