package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caikaidev/CoinCow/internal/domain"
	"github.com/caikaidev/CoinCow/internal/infra"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := infra.DefaultConfig()
	cfg.API.BaseURL = serverURL
	cfg.API.TimeoutSec = 5

	limiter := infra.NewRateLimiter(time.Millisecond, 20*time.Millisecond)
	return NewClient(cfg, limiter, nil)
}

func TestClient_MarketData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("vs_currency"); got != "usd" {
			t.Errorf("vs_currency = %q, want usd", got)
		}
		if got := r.URL.Query().Get("ids"); got != "bitcoin,ethereum" {
			t.Errorf("ids = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,"market_cap_rank":1},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"market_cap_rank":2}
		]`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	coins, err := client.MarketData(context.Background(), "usd", []string{"bitcoin", "ethereum"}, 50, 1)
	if err != nil {
		t.Fatalf("MarketData failed: %v", err)
	}
	if len(coins) != 2 || coins[0].ID != "bitcoin" || coins[0].CurrentPrice != 50000 {
		t.Errorf("unexpected decode: %+v", coins)
	}
	if coins[0].MarketCapRank == nil || *coins[0].MarketCapRank != 1 {
		t.Errorf("rank not decoded: %+v", coins[0])
	}
}

func TestClient_CoinDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"description":{"en":"digital gold"},
			"image":{"thumb":"t","small":"s","large":"l"},
			"market_data":{"current_price":{"usd":50000},"market_cap":{"usd":1000000},
				"total_volume":{"usd":5},"high_24h":{"usd":51000},"low_24h":{"usd":49000},
				"sparkline_7d":{"price":[1,2,3]}},
			"last_updated":"2024-01-01T00:00:00Z"
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	details, err := client.CoinDetails(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("CoinDetails failed: %v", err)
	}
	if details.Description != "digital gold" {
		t.Errorf("description not mapped from localized block: %q", details.Description)
	}
	if details.MarketData.CurrentPrice["usd"] != 50000 {
		t.Errorf("market data not mapped: %+v", details.MarketData)
	}
	if details.MarketData.Sparkline7d == nil || len(details.MarketData.Sparkline7d.Price) != 3 {
		t.Errorf("sparkline not mapped: %+v", details.MarketData.Sparkline7d)
	}
}

func TestClient_PriceHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"prices":[[1700000000000,50000],[1700000060000,50100]],
			"market_caps":[[1700000000000,900000]],
			"total_volumes":[[1700000000000,12345]]
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	history, err := client.PriceHistory(context.Background(), "bitcoin", "usd", "7")
	if err != nil {
		t.Fatalf("PriceHistory failed: %v", err)
	}
	if history.CoinID != "bitcoin" || history.Currency != "usd" || history.Days != "7" {
		t.Errorf("identity not set: %+v", history)
	}
	if len(history.Prices) != 2 || history.Prices[0].Timestamp != 1700000000000 {
		t.Errorf("prices not mapped: %+v", history.Prices)
	}
	if len(history.MarketCaps) != 1 || len(history.TotalVolumes) != 1 {
		t.Errorf("parallel series not mapped: %+v", history)
	}
}

func TestClient_ClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   domain.FailureKind
	}{
		{http.StatusNotFound, domain.FailureNotFound},
		{http.StatusInternalServerError, domain.FailureServerError},
		{http.StatusBadGateway, domain.FailureServerError},
		{http.StatusForbidden, domain.FailureHTTP},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := testClient(t, srv.URL)
		_, err := client.Search(context.Background(), "bitcoin")
		if domain.KindOf(err) != tt.want {
			t.Errorf("status %d: got %v, want kind %s", tt.status, err, tt.want)
		}
		srv.Close()
	}
}

// A single 429 is absorbed by the cooldown and the request re-dispatched
// exactly once.
func TestClient_AbsorbsOneRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"coins":[{"id":"bitcoin","name":"Bitcoin","symbol":"btc","thumb":"t","large":"l"}]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	coins, err := client.Search(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("expected the retry after cooldown to succeed: %v", err)
	}
	if len(coins) != 1 {
		t.Errorf("unexpected result: %+v", coins)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected exactly 2 dispatches, got %d", got)
	}
}

// Two consecutive 429s surface as a rate-limit failure for the retry layer.
func TestClient_PersistentRateLimitSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.Search(context.Background(), "bitcoin")
	if domain.KindOf(err) != domain.FailureRateLimited {
		t.Errorf("got %v, want RATE_LIMITED", err)
	}
}

func TestClient_ConnectivityFailure(t *testing.T) {
	// Reserve a port and close it so the dial fails fast.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	client := testClient(t, deadURL)
	_, err := client.Search(context.Background(), "bitcoin")
	if domain.KindOf(err) != domain.FailureConnectivity {
		t.Errorf("got %v, want CONNECTIVITY", err)
	}
}
