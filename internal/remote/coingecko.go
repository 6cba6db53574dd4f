package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/caikaidev/CoinCow/internal/domain"
	"github.com/caikaidev/CoinCow/internal/infra"
)

// Client talks to the CoinGecko REST API. Every outbound call is gated by
// the rate limiter and the circuit breaker; failures come back classified
// as *domain.Failure so the retry layer can tell transient from terminal.
type Client struct {
	http    *resty.Client
	limiter *infra.RateLimiter
	breaker *infra.Breaker
}

// NewClient builds a client from the API section of the config.
func NewClient(cfg *infra.Config, limiter *infra.RateLimiter, breaker *infra.Breaker) *Client {
	rc := resty.New()
	rc.SetBaseURL(cfg.API.BaseURL)
	rc.SetTimeout(cfg.RequestTimeout())
	rc.SetHeader("Accept", "application/json")
	if cfg.API.Key != "" {
		rc.SetHeader("x-cg-demo-api-key", cfg.API.Key)
	}

	return &Client{http: rc, limiter: limiter, breaker: breaker}
}

// MarketData fetches the bulk market listing, optionally filtered to ids.
func (c *Client) MarketData(ctx context.Context, currency string, ids []string, perPage, page int) ([]domain.CoinMarketData, error) {
	query := map[string]string{
		"vs_currency": currency,
		"order":       "market_cap_desc",
		"per_page":    strconv.Itoa(perPage),
		"page":        strconv.Itoa(page),
		"sparkline":   "false",
	}
	if len(ids) > 0 {
		query["ids"] = strings.Join(ids, ",")
	}

	var result []domain.CoinMarketData
	if err := c.get(ctx, "/coins/markets", query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CoinDetails fetches the full record for one coin.
func (c *Client) CoinDetails(ctx context.Context, coinID string) (*domain.CoinDetails, error) {
	query := map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "true",
		"developer_data": "true",
		"sparkline":      "true",
	}

	var dto coinDetailsDTO
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), query, &dto); err != nil {
		return nil, err
	}
	details := dto.toDomain()
	return &details, nil
}

// PriceHistory fetches the chart series for one (coin, currency, window).
func (c *Client) PriceHistory(ctx context.Context, coinID, currency, days string) (*domain.CoinPriceHistory, error) {
	query := map[string]string{
		"vs_currency": currency,
		"days":        days,
	}

	var dto priceHistoryDTO
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", query, &dto); err != nil {
		return nil, err
	}
	history := dto.toDomain(coinID, currency, days)
	return &history, nil
}

// Search runs an uncached text search.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchCoin, error) {
	var dto searchResponseDTO
	if err := c.get(ctx, "/search", map[string]string{"query": query}, &dto); err != nil {
		return nil, err
	}
	return dto.Coins, nil
}

// get performs one rate-limited GET. A 429 is absorbed once: wait out the
// long cooldown, then re-dispatch the same request a single time before
// surrendering to the caller's retry layer.
func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	if c.breaker != nil && !c.breaker.Allow() {
		return domain.NewFailure(domain.FailureUnknown, "market api circuit open", nil)
	}

	resp, err := c.dispatch(ctx, path, query, out)
	if err == nil && resp.StatusCode() == http.StatusTooManyRequests {
		if cerr := c.limiter.Cooldown(ctx); cerr != nil {
			return cerr
		}
		resp, err = c.dispatch(ctx, path, query, out)
	}

	failure := c.classify(resp, err)
	if c.breaker != nil {
		if failure == nil {
			c.breaker.RecordSuccess()
		} else if !errors.Is(failure, context.Canceled) && !errors.Is(failure, context.DeadlineExceeded) {
			c.breaker.RecordFailure()
		}
	}
	return failure
}

func (c *Client) dispatch(ctx context.Context, path string, query map[string]string, out any) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		Get(path)
}

// classify folds a resty response/error pair into the failure taxonomy.
// Returns nil on success.
func (c *Client) classify(resp *resty.Response, err error) error {
	if err != nil {
		// Context errors belong to the caller, not the taxonomy.
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.NewFailure(domain.FailureTimeout, "request deadline exceeded", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return domain.NewFailure(domain.FailureTimeout, "network timeout", err)
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return domain.NewFailure(domain.FailureConnectivity, "dns lookup failed", err)
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return domain.NewFailure(domain.FailureConnectivity, "connection failed", err)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return domain.NewFailure(domain.FailureConnectivity, "request failed", err)
		}
		return domain.NewFailure(domain.FailureUnknown, "unexpected transport error", err)
	}

	code := resp.StatusCode()
	switch {
	case resp.IsSuccess():
		return nil
	case code == http.StatusTooManyRequests:
		return domain.NewHTTPFailure(domain.FailureRateLimited, code, "rate limited by upstream")
	case code == http.StatusNotFound:
		return domain.NewHTTPFailure(domain.FailureNotFound, code, "resource not found")
	case code >= 500:
		return domain.NewHTTPFailure(domain.FailureServerError, code, fmt.Sprintf("server error %d", code))
	default:
		return domain.NewHTTPFailure(domain.FailureHTTP, code, fmt.Sprintf("unexpected status %d", code))
	}
}
