package domain

// CoinDetails is the full single-coin record behind the detail view.
// Built by the remote layer from the upstream detail response; persisted as
// one JSON blob per coin id.
type CoinDetails struct {
	ID                  string                   `json:"id"`
	Symbol              string                   `json:"symbol"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description"`
	Image               CoinImage                `json:"image"`
	MarketData          CoinMarketDetails        `json:"market_data"`
	CommunityData       *CoinCommunityData       `json:"community_data,omitempty"`
	DeveloperData       *CoinDeveloperData       `json:"developer_data,omitempty"`
	PublicInterestStats *CoinPublicInterestStats `json:"public_interest_stats,omitempty"`
	LastUpdated         string                   `json:"last_updated"`
}

// CoinImage carries the three upstream image sizes.
type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// CoinMarketDetails is the per-currency market block of a detail record.
type CoinMarketDetails struct {
	CurrentPrice                 map[string]float64 `json:"current_price"`
	MarketCap                    map[string]float64 `json:"market_cap"`
	TotalVolume                  map[string]float64 `json:"total_volume"`
	High24h                      map[string]float64 `json:"high_24h"`
	Low24h                       map[string]float64 `json:"low_24h"`
	PriceChange24h               *float64           `json:"price_change_24h,omitempty"`
	PriceChangePercentage24h     *float64           `json:"price_change_percentage_24h,omitempty"`
	PriceChangePercentage7d      *float64           `json:"price_change_percentage_7d,omitempty"`
	PriceChangePercentage14d     *float64           `json:"price_change_percentage_14d,omitempty"`
	PriceChangePercentage30d     *float64           `json:"price_change_percentage_30d,omitempty"`
	PriceChangePercentage60d     *float64           `json:"price_change_percentage_60d,omitempty"`
	PriceChangePercentage200d    *float64           `json:"price_change_percentage_200d,omitempty"`
	PriceChangePercentage1y      *float64           `json:"price_change_percentage_1y,omitempty"`
	MarketCapChange24h           *float64           `json:"market_cap_change_24h,omitempty"`
	MarketCapChangePercentage24h *float64           `json:"market_cap_change_percentage_24h,omitempty"`
	TotalSupply                  *float64           `json:"total_supply,omitempty"`
	MaxSupply                    *float64           `json:"max_supply,omitempty"`
	CirculatingSupply            *float64           `json:"circulating_supply,omitempty"`
	Sparkline7d                  *SparklineData     `json:"sparkline_7d,omitempty"`
}

// SparklineData is the optional 7-day price sparkline.
type SparklineData struct {
	Price []float64 `json:"price"`
}

type CoinCommunityData struct {
	FacebookLikes            *int     `json:"facebook_likes,omitempty"`
	TwitterFollowers         *int     `json:"twitter_followers,omitempty"`
	RedditAveragePosts48h    *float64 `json:"reddit_average_posts_48h,omitempty"`
	RedditAverageComments48h *float64 `json:"reddit_average_comments_48h,omitempty"`
	RedditSubscribers        *int     `json:"reddit_subscribers,omitempty"`
	RedditAccountsActive48h  *int     `json:"reddit_accounts_active_48h,omitempty"`
}

type CoinDeveloperData struct {
	Forks                        *int         `json:"forks,omitempty"`
	Stars                        *int         `json:"stars,omitempty"`
	Subscribers                  *int         `json:"subscribers,omitempty"`
	TotalIssues                  *int         `json:"total_issues,omitempty"`
	ClosedIssues                 *int         `json:"closed_issues,omitempty"`
	PullRequestsMerged           *int         `json:"pull_requests_merged,omitempty"`
	PullRequestContributors      *int         `json:"pull_request_contributors,omitempty"`
	CodeAdditionsDeletions4Weeks *CodeChanges `json:"code_additions_deletions_4_weeks,omitempty"`
	CommitCount4Weeks            *int         `json:"commit_count_4_weeks,omitempty"`
}

type CodeChanges struct {
	Additions *int `json:"additions,omitempty"`
	Deletions *int `json:"deletions,omitempty"`
}

type CoinPublicInterestStats struct {
	AlexaRank   *int `json:"alexa_rank,omitempty"`
	BingMatches *int `json:"bing_matches,omitempty"`
}
