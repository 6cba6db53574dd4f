package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/caikaidev/CoinCow/internal/app"
	"github.com/caikaidev/CoinCow/internal/domain"
	"github.com/caikaidev/CoinCow/internal/infra"
)

const usage = `CoinCow - cached cryptocurrency market data

Usage:
  coincow markets [-currency usd] [-force]         top coins by market cap
  coincow coin <id> [-force]                       full details for one coin
  coincow history <id> [-currency usd] [-days 7]   price history series
  coincow search <query>                           search coins by name/symbol
  coincow watchlist                                market data for followed coins
  coincow watchlist add <id> | remove <id> | ids   manage the followed set
  coincow watch                                    keep the cache warm until Ctrl+C
  coincow clear                                    wipe every cached record
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, bootstrap, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, b *app.Bootstrap, command string, args []string) error {
	switch command {
	case "markets":
		return runMarkets(ctx, b, args)
	case "coin":
		return runCoin(ctx, b, args)
	case "history":
		return runHistory(ctx, b, args)
	case "search":
		return runSearch(ctx, b, args)
	case "watchlist":
		return runWatchlist(ctx, b, args)
	case "watch":
		return runWatch(ctx, b)
	case "clear":
		return b.Repo.ClearCache(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runMarkets(ctx context.Context, b *app.Bootstrap, args []string) error {
	fs := flag.NewFlagSet("markets", flag.ExitOnError)
	currency := fs.String("currency", b.Config.Sync.Currency, "quote currency")
	force := fs.Bool("force", false, "bypass the cache")
	fs.Parse(args)

	coins, err := b.Repo.GetMarketData(ctx, *currency, *force)
	if err != nil {
		return err
	}
	printMarketTable(coins)
	return nil
}

func runCoin(ctx context.Context, b *app.Bootstrap, args []string) error {
	fs := flag.NewFlagSet("coin", flag.ExitOnError)
	force := fs.Bool("force", false, "bypass the cache")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: coincow coin <id>")
	}

	details, err := b.Repo.GetCoinDetails(ctx, fs.Arg(0), *force)
	if err != nil {
		return err
	}

	currency := b.Config.Sync.Currency
	fmt.Printf("%s (%s)\n", details.Name, details.Symbol)
	if price, ok := details.MarketData.CurrentPrice[currency]; ok {
		fmt.Printf("  price:   %s\n", domain.FormatPrice(price))
	}
	if change := details.MarketData.PriceChangePercentage24h; change != nil {
		fmt.Printf("  24h:     %+.2f%%\n", *change)
	}
	if mcap, ok := details.MarketData.MarketCap[currency]; ok {
		fmt.Printf("  mkt cap: %s\n", domain.FormatPrice(mcap))
	}
	if details.Description != "" {
		fmt.Printf("  about:   %.200s\n", details.Description)
	}
	return nil
}

func runHistory(ctx context.Context, b *app.Bootstrap, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	currency := fs.String("currency", b.Config.Sync.Currency, "quote currency")
	days := fs.String("days", "7", "window in days")
	force := fs.Bool("force", false, "bypass the cache")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: coincow history <id>")
	}

	history, err := b.Repo.GetCoinPriceHistory(ctx, fs.Arg(0), *currency, *days, *force)
	if err != nil {
		return err
	}

	fmt.Printf("%s / %s over %s days: %d points\n",
		history.CoinID, history.Currency, history.Days, len(history.Prices))
	if high, ok := history.HighestPrice(); ok {
		fmt.Printf("  high:   %s\n", domain.FormatPrice(high))
	}
	if low, ok := history.LowestPrice(); ok {
		fmt.Printf("  low:    %s\n", domain.FormatPrice(low))
	}
	if change, ok := history.PriceChangePercentage(); ok {
		fmt.Printf("  change: %+.2f%%\n", change)
	}
	return nil
}

func runSearch(ctx context.Context, b *app.Bootstrap, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: coincow search <query>")
	}

	coins, err := b.Repo.SearchCoins(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSYMBOL\tRANK")
	for _, c := range coins {
		rank := "-"
		if c.MarketCapRank != nil {
			rank = fmt.Sprintf("#%d", *c.MarketCapRank)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Symbol, rank)
	}
	return w.Flush()
}

func runWatchlist(ctx context.Context, b *app.Bootstrap, args []string) error {
	if len(args) == 0 {
		ids, err := b.Watchlist.Watchlist()
		if err != nil {
			return err
		}
		coins, err := b.Repo.GetWatchlistMarketData(ctx, ids, b.Config.Sync.Currency, false)
		if err != nil {
			return err
		}
		printMarketTable(coins)
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: coincow watchlist add <id>")
		}
		return b.Watchlist.Add(args[1])
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: coincow watchlist remove <id>")
		}
		return b.Watchlist.Remove(args[1])
	case "ids":
		ids, err := b.Watchlist.Watchlist()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	default:
		return fmt.Errorf("unknown watchlist subcommand %q", args[0])
	}
}

func runWatch(ctx context.Context, b *app.Bootstrap) error {
	infra.PrintBanner(b.Config, b.Network.Quality())
	b.Syncer.Start(ctx)
	slog.Info("✨ Background sync running. Press Ctrl+C to exit.")
	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")
	b.Syncer.Stop()
	return nil
}

func printMarketTable(coins []domain.CoinMarketData) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSYMBOL\tPRICE\t24H")
	for _, c := range coins {
		rank := "-"
		if c.MarketCapRank != nil {
			rank = fmt.Sprintf("%d", *c.MarketCapRank)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rank, c.Name, c.Symbol, c.FormattedPrice(), c.FormattedChange24h())
	}
	w.Flush()
}
