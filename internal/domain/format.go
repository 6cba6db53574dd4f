package domain

import (
	"github.com/shopspring/decimal"
)

// Display formatting for CLI output. Decimal arithmetic avoids the
// float-printing artifacts that show up with very small altcoin prices.

// FormatPrice renders a price with a precision suited to its magnitude:
// sub-cent coins keep 6 decimal places, everything else 2.
func FormatPrice(price float64) string {
	d := decimal.NewFromFloat(price)
	places := int32(2)
	if d.Abs().LessThan(decimal.NewFromFloat(0.01)) && !d.IsZero() {
		places = 6
	}
	return "$" + d.Round(places).StringFixed(places)
}

// FormattedPrice renders the current price for display.
func (c CoinMarketData) FormattedPrice() string {
	return FormatPrice(c.CurrentPrice)
}

// FormattedChange24h renders the 24h change percentage with an explicit
// sign, or "N/A" when upstream did not supply one.
func (c CoinMarketData) FormattedChange24h() string {
	if c.PriceChangePercentage24h == nil {
		return "N/A"
	}
	d := decimal.NewFromFloat(*c.PriceChangePercentage24h).Round(2)
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}
