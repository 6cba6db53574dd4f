package remote

import (
	"github.com/caikaidev/CoinCow/internal/domain"
)

// Wire shapes that don't decode straight into domain types. The bulk market
// listing and search results match their domain records field-for-field, so
// only the detail and chart responses need explicit DTOs.

type coinDetailsDTO struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Description map[string]string `json:"description"`
	Image       domain.CoinImage  `json:"image"`
	MarketData  *marketDetailsDTO `json:"market_data"`
	// The optional statistics blocks share their shape with the domain.
	CommunityData       *domain.CoinCommunityData       `json:"community_data"`
	DeveloperData       *domain.CoinDeveloperData       `json:"developer_data"`
	PublicInterestStats *domain.CoinPublicInterestStats `json:"public_interest_stats"`
	LastUpdated         string                          `json:"last_updated"`
}

type marketDetailsDTO struct {
	CurrentPrice                 map[string]float64    `json:"current_price"`
	MarketCap                    map[string]float64    `json:"market_cap"`
	TotalVolume                  map[string]float64    `json:"total_volume"`
	High24h                      map[string]float64    `json:"high_24h"`
	Low24h                       map[string]float64    `json:"low_24h"`
	PriceChange24h               *float64              `json:"price_change_24h"`
	PriceChangePercentage24h     *float64              `json:"price_change_percentage_24h"`
	PriceChangePercentage7d      *float64              `json:"price_change_percentage_7d"`
	PriceChangePercentage14d     *float64              `json:"price_change_percentage_14d"`
	PriceChangePercentage30d     *float64              `json:"price_change_percentage_30d"`
	PriceChangePercentage60d     *float64              `json:"price_change_percentage_60d"`
	PriceChangePercentage200d    *float64              `json:"price_change_percentage_200d"`
	PriceChangePercentage1y      *float64              `json:"price_change_percentage_1y"`
	MarketCapChange24h           *float64              `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h *float64              `json:"market_cap_change_percentage_24h"`
	TotalSupply                  *float64              `json:"total_supply"`
	MaxSupply                    *float64              `json:"max_supply"`
	CirculatingSupply            *float64              `json:"circulating_supply"`
	Sparkline7d                  *domain.SparklineData `json:"sparkline_7d"`
}

func (d coinDetailsDTO) toDomain() domain.CoinDetails {
	out := domain.CoinDetails{
		ID:                  d.ID,
		Symbol:              d.Symbol,
		Name:                d.Name,
		Description:         d.Description["en"],
		Image:               d.Image,
		CommunityData:       d.CommunityData,
		DeveloperData:       d.DeveloperData,
		PublicInterestStats: d.PublicInterestStats,
		LastUpdated:         d.LastUpdated,
	}
	if d.MarketData != nil {
		out.MarketData = domain.CoinMarketDetails{
			CurrentPrice:                 d.MarketData.CurrentPrice,
			MarketCap:                    d.MarketData.MarketCap,
			TotalVolume:                  d.MarketData.TotalVolume,
			High24h:                      d.MarketData.High24h,
			Low24h:                       d.MarketData.Low24h,
			PriceChange24h:               d.MarketData.PriceChange24h,
			PriceChangePercentage24h:     d.MarketData.PriceChangePercentage24h,
			PriceChangePercentage7d:      d.MarketData.PriceChangePercentage7d,
			PriceChangePercentage14d:     d.MarketData.PriceChangePercentage14d,
			PriceChangePercentage30d:     d.MarketData.PriceChangePercentage30d,
			PriceChangePercentage60d:     d.MarketData.PriceChangePercentage60d,
			PriceChangePercentage200d:    d.MarketData.PriceChangePercentage200d,
			PriceChangePercentage1y:      d.MarketData.PriceChangePercentage1y,
			MarketCapChange24h:           d.MarketData.MarketCapChange24h,
			MarketCapChangePercentage24h: d.MarketData.MarketCapChangePercentage24h,
			TotalSupply:                  d.MarketData.TotalSupply,
			MaxSupply:                    d.MarketData.MaxSupply,
			CirculatingSupply:            d.MarketData.CirculatingSupply,
			Sparkline7d:                  d.MarketData.Sparkline7d,
		}
	}
	return out
}

// priceHistoryDTO mirrors the chart endpoint: each series is a list of
// [timestamp, value] pairs.
type priceHistoryDTO struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

func (d priceHistoryDTO) toDomain(coinID, currency, days string) domain.CoinPriceHistory {
	return domain.CoinPriceHistory{
		CoinID:       coinID,
		Currency:     currency,
		Days:         days,
		Prices:       toPoints(d.Prices),
		MarketCaps:   toPoints(d.MarketCaps),
		TotalVolumes: toPoints(d.TotalVolumes),
	}
}

func toPoints(pairs [][]float64) []domain.PricePoint {
	if pairs == nil {
		return nil
	}
	out := make([]domain.PricePoint, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}
		out = append(out, domain.PricePoint{Timestamp: int64(pair[0]), Price: pair[1]})
	}
	return out
}

type searchResponseDTO struct {
	Coins []domain.SearchCoin `json:"coins"`
}
