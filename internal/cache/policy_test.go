package cache

import (
	"testing"
	"time"

	"github.com/caikaidev/CoinCow/internal/infra"
)

func TestExpiryWindow_NetworkScaling(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	tests := []struct {
		name     string
		category Category
		quality  infra.NetworkQuality
		want     time.Duration
	}{
		{"market on fast halves", CategoryMarketData, infra.QualityFast, 30 * time.Second},
		{"market on metered doubles", CategoryMarketData, infra.QualityMetered, 2 * time.Minute},
		{"market on poor quadruples", CategoryMarketData, infra.QualityPoor, 4 * time.Minute},
		{"market offline quadruples", CategoryMarketData, infra.QualityNone, 4 * time.Minute},
		{"details on metered", CategoryCoinDetails, infra.QualityMetered, 10 * time.Minute},
		{"history on fast", CategoryPriceHistory, infra.QualityFast, 150 * time.Second},
		{"search on fast", CategorySearch, infra.QualityFast, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExpiryWindow(tt.category, tt.quality); got != tt.want {
				t.Errorf("ExpiryWindow(%s, %s) = %s, want %s", tt.category, tt.quality, got, tt.want)
			}
		})
	}
}

func TestExpiryWindow_PreferencesNeverExpire(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	window := p.ExpiryWindow(CategoryUserPreferences, infra.QualityFast)
	if window < 100*365*24*time.Hour {
		t.Errorf("preferences window should be effectively infinite, got %s", window)
	}
}

// Usability must flip from true to false exactly once as age grows.
func TestIsUsable_StalenessMonotonicity(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	qualities := []infra.NetworkQuality{infra.QualityFast, infra.QualityMetered, infra.QualityPoor}
	for _, q := range qualities {
		t.Run(q.String(), func(t *testing.T) {
			if !p.IsUsable(CategoryMarketData, q, 0) {
				t.Fatal("age 0 must always be usable when connected")
			}

			flipped := false
			prev := true
			for age := time.Duration(0); age <= 30*time.Minute; age += time.Second {
				usable := p.IsUsable(CategoryMarketData, q, age)
				if usable && !prev {
					t.Fatalf("usability flipped back to true at age %s on %s", age, q)
				}
				if !usable {
					flipped = true
				}
				prev = usable
			}
			if !flipped {
				t.Errorf("usability never expired within 30m on %s", q)
			}
		})
	}
}

// Offline, cache of any vintage is trusted.
func TestIsUsable_OfflineTrust(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	tenYears := 10 * 365 * 24 * time.Hour
	for _, cat := range []Category{CategoryMarketData, CategoryCoinDetails, CategoryPriceHistory} {
		if !p.IsUsable(cat, infra.QualityNone, tenYears) {
			t.Errorf("offline %s cache of 10 years should still be usable", cat)
		}
	}
}

func TestIsUsable_MeteredLeniencyBand(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	// Metered market window is 2m; the leniency band extends to 4m.
	if !p.IsUsable(CategoryMarketData, infra.QualityMetered, 3*time.Minute) {
		t.Error("3m-old cache should fall in the metered leniency band")
	}
	if p.IsUsable(CategoryMarketData, infra.QualityMetered, 5*time.Minute) {
		t.Error("5m-old cache is beyond the leniency band")
	}
}

func TestBatchSize(t *testing.T) {
	p := NewPolicy(DefaultWindows())

	tests := []struct {
		category Category
		quality  infra.NetworkQuality
		want     int
	}{
		{CategoryMarketData, infra.QualityFast, 50},
		{CategoryMarketData, infra.QualityMetered, 25},
		{CategoryMarketData, infra.QualityPoor, 12},
		{CategoryMarketData, infra.QualityNone, 0},
		{CategoryCoinDetails, infra.QualityMetered, 5},
		{CategoryPriceHistory, infra.QualityPoor, 1},
		{CategorySearch, infra.QualityFast, 20},
	}

	for _, tt := range tests {
		got := p.BatchSize(tt.category, tt.quality)
		if got != tt.want {
			t.Errorf("BatchSize(%s, %s) = %d, want %d", tt.category, tt.quality, got, tt.want)
		}
	}
}
