package domain

// SearchCoin is one hit of the text-search endpoint. Search results are
// never cached, so there is no storage wrapper for this type.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}
