package domain

import "math"

// CoinMarketData is one row of the bulk market listing.
// JSON tags mirror the CoinGecko /coins/markets response so the record can be
// decoded straight off the wire; optional upstream fields stay pointers so
// "absent" and "zero" remain distinguishable.
type CoinMarketData struct {
	ID                           string   `json:"id"`
	Symbol                       string   `json:"symbol"`
	Name                         string   `json:"name"`
	Image                        string   `json:"image"`
	CurrentPrice                 float64  `json:"current_price"`
	MarketCap                    *float64 `json:"market_cap"`
	MarketCapRank                *int     `json:"market_cap_rank"`
	FullyDilutedValuation        *float64 `json:"fully_diluted_valuation"`
	TotalVolume                  *float64 `json:"total_volume"`
	High24h                      *float64 `json:"high_24h"`
	Low24h                       *float64 `json:"low_24h"`
	PriceChange24h               *float64 `json:"price_change_24h"`
	PriceChangePercentage24h     *float64 `json:"price_change_percentage_24h"`
	MarketCapChange24h           *float64 `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h *float64 `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            *float64 `json:"circulating_supply"`
	TotalSupply                  *float64 `json:"total_supply"`
	MaxSupply                    *float64 `json:"max_supply"`
	ATH                          *float64 `json:"ath"`
	ATHChangePercentage          *float64 `json:"ath_change_percentage"`
	ATHDate                      *string  `json:"ath_date"`
	ATL                          *float64 `json:"atl"`
	ATLChangePercentage          *float64 `json:"atl_change_percentage"`
	ATLDate                      *string  `json:"atl_date"`
	LastUpdated                  string   `json:"last_updated"`
}

// IsValidPriceData reports whether the record satisfies the per-record
// validity predicate: finite positive price, sane 24h change, identity
// fields present, and supply figures that do not contradict each other.
func (c CoinMarketData) IsValidPriceData() bool {
	if c.ID == "" || c.Symbol == "" || c.Name == "" {
		return false
	}
	if c.CurrentPrice <= 0 || math.IsNaN(c.CurrentPrice) || math.IsInf(c.CurrentPrice, 0) {
		return false
	}
	if c.PriceChangePercentage24h != nil {
		p := *c.PriceChangePercentage24h
		if math.IsNaN(p) || math.IsInf(p, 0) || math.Abs(p) > 1000 {
			return false
		}
	}
	if c.MarketCapRank != nil && *c.MarketCapRank <= 0 {
		return false
	}
	if c.CirculatingSupply != nil {
		if c.TotalSupply != nil && *c.CirculatingSupply > *c.TotalSupply {
			return false
		}
		if c.MaxSupply != nil && *c.CirculatingSupply > *c.MaxSupply {
			return false
		}
	}
	return true
}

// IsPriceUp reports whether the coin is trending up over the last 24h.
func (c CoinMarketData) IsPriceUp() bool {
	return c.PriceChangePercentage24h != nil && *c.PriceChangePercentage24h > 0
}
