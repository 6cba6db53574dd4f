package validator

import (
	"math"
	"sort"

	"github.com/caikaidev/CoinCow/internal/domain"
)

// Thresholds are the empirical knobs of corruption detection. They are
// tuning values, not invariants, so they live in config rather than as
// hardcoded constants.
type Thresholds struct {
	// ZeroPriceRatio flags a batch when more than this share of records
	// carry an exactly-zero price.
	ZeroPriceRatio float64
	// MaxChangePercent treats a larger absolute 24h change as a sentinel
	// for corrupted upstream data, not a real market move.
	MaxChangePercent float64
	// OutlierRatio drops series points deviating from the batch median by
	// more than this factor (or less than its inverse).
	OutlierRatio float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ZeroPriceRatio:   0.1,
		MaxChangePercent: 1000,
		OutlierRatio:     10,
	}
}

// Validator inspects payloads returned by the transport for corruption
// signatures and repairs recoverable records. All methods are total: they
// never panic, whatever the input looks like.
type Validator struct {
	t Thresholds
}

func New(t Thresholds) *Validator {
	return &Validator{t: t}
}

// ValidateMarketData reports whether the record passes per-record checks:
// positive finite price, sane 24h change, non-blank identity fields.
func (v *Validator) ValidateMarketData(d domain.CoinMarketData) bool {
	if d.ID == "" || d.Symbol == "" || d.Name == "" {
		return false
	}
	if d.CurrentPrice <= 0 || !isFinite(d.CurrentPrice) {
		return false
	}
	if d.PriceChangePercentage24h != nil {
		p := *d.PriceChangePercentage24h
		if !isFinite(p) || math.Abs(p) > v.t.MaxChangePercent {
			return false
		}
	}
	return true
}

// SanitizeMarketData returns a best-effort corrected copy of the record.
// Unfixable numeric fields are clamped or dropped to "unknown"; the record
// is always usable afterwards, even if it came in with NaNs everywhere.
func (v *Validator) SanitizeMarketData(d domain.CoinMarketData) domain.CoinMarketData {
	out := d

	if !isFinite(out.CurrentPrice) || out.CurrentPrice < 0 {
		out.CurrentPrice = 0
	}
	if out.MarketCap != nil && (!isFinite(*out.MarketCap) || *out.MarketCap < 0) {
		out.MarketCap = nil
	}
	if out.TotalVolume != nil && (!isFinite(*out.TotalVolume) || *out.TotalVolume < 0) {
		out.TotalVolume = nil
	}
	if out.PriceChangePercentage24h != nil {
		p := *out.PriceChangePercentage24h
		if !isFinite(p) || math.Abs(p) > v.t.MaxChangePercent {
			out.PriceChangePercentage24h = nil
		}
	}
	if out.MarketCapRank != nil && *out.MarketCapRank <= 0 {
		out.MarketCapRank = nil
	}
	return out
}

// DetectResponseCorruption flags batch-level corruption signatures:
// too many zero prices, one identical price across the batch, or
// duplicate coin ids.
func (v *Validator) DetectResponseCorruption(list []domain.CoinMarketData) bool {
	if len(list) == 0 {
		return true
	}

	zeroCount := 0
	prices := make(map[float64]struct{}, len(list))
	ids := make(map[string]struct{}, len(list))
	for _, d := range list {
		if d.CurrentPrice == 0 {
			zeroCount++
		}
		prices[d.CurrentPrice] = struct{}{}
		ids[d.ID] = struct{}{}
	}

	if float64(zeroCount) > float64(len(list))*v.t.ZeroPriceRatio {
		return true
	}
	if len(prices) == 1 && len(list) > 1 {
		return true
	}
	if len(ids) != len(list) {
		return true
	}
	return false
}

// ValidatePriceHistory reports whether a series is worth keeping at all:
// identity present, non-empty, and no more than 20% invalid points.
func (v *Validator) ValidatePriceHistory(h domain.CoinPriceHistory) bool {
	if h.CoinID == "" || h.Currency == "" {
		return false
	}
	if len(h.Prices) == 0 {
		return false
	}

	invalid := 0
	for _, p := range h.Prices {
		if !p.IsValid() {
			invalid++
		}
	}
	return float64(invalid) <= float64(len(h.Prices))*0.2
}

// SanitizePriceHistory drops invalid points, deduplicates by timestamp
// (first occurrence wins), sorts ascending, and removes statistical
// outliers from the price series. Market-cap and volume series get the
// same filtering minus the outlier pass.
func (v *Validator) SanitizePriceHistory(h domain.CoinPriceHistory) domain.CoinPriceHistory {
	out := h
	out.Prices = v.sanitizeSeries(h.Prices, true)
	if h.MarketCaps != nil {
		out.MarketCaps = v.sanitizeSeries(h.MarketCaps, false)
	}
	if h.TotalVolumes != nil {
		out.TotalVolumes = v.sanitizeSeries(h.TotalVolumes, false)
	}
	return out
}

func (v *Validator) sanitizeSeries(points []domain.PricePoint, dropOutliers bool) []domain.PricePoint {
	valid := make([]domain.PricePoint, 0, len(points))
	seen := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if !p.IsValid() {
			continue
		}
		if _, dup := seen[p.Timestamp]; dup {
			continue
		}
		seen[p.Timestamp] = struct{}{}
		valid = append(valid, p)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Timestamp < valid[j].Timestamp })

	// Outlier filtering needs a meaningful median; tiny series pass through.
	if !dropOutliers || len(valid) < 3 {
		return valid
	}

	median := medianPrice(valid)
	if median <= 0 {
		return valid
	}

	filtered := valid[:0]
	for _, p := range valid {
		ratio := p.Price / median
		if ratio >= 1/v.t.OutlierRatio && ratio <= v.t.OutlierRatio {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func medianPrice(points []domain.PricePoint) float64 {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	sort.Float64s(prices)
	return prices[len(prices)/2]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
