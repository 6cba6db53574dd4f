package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner for the long-running watch mode.
// The color tracks the current link quality so a degraded connection is
// visible at a glance.
func PrintBanner(cfg *Config, quality NetworkQuality) {
	color := ColorGreen
	switch quality {
	case QualityNone:
		color = ColorRed
	case QualityPoor:
		color = ColorYellow
	case QualityMetered:
		color = ColorCyan
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#                 🐮 CoinCow Market Cache                 #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   VERSION:  %-35s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   NETWORK:  %-35s #%s\n", color, quality.String(), ColorReset)
	fmt.Printf("%s#   CURRENCY: %-35s #%s\n", color, cfg.Sync.Currency, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if quality == QualityNone {
		fmt.Printf("%s#   ⚠️  OFFLINE: SERVING CACHED DATA ONLY  ⚠️             #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
