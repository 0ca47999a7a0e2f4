package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeenv/config"
	"github.com/rustyeddy/tradeenv/data"
	"github.com/rustyeddy/tradeenv/data/binance"
	"github.com/rustyeddy/tradeenv/market"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage cached market data",
	Long: `Download and cache Binance klines as OHLCV CSV files.

Subcommands:
  fetch - Download bars into the cache directory

Examples:
  trader data fetch --symbol BTCUSDT --interval 1d --start 2021-01-01 --end 2021-12-31`,
}

var dataFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download bars into the cache directory",
	Long: `Fetch klines for a symbol and interval and write them to
{dir}/{symbol}_{interval}_data.csv. A cached file that already covers
the range is reused.

Example:
  trader data fetch -s ETHUSDT -i 1h --start 2024-01-01 --end 2024-02-01`,
	Args: cobra.NoArgs,
	RunE: runDataFetch,
}

var (
	fetchSymbol   string
	fetchInterval string
	fetchStart    string
	fetchEnd      string
	fetchDir      string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataFetchCmd)

	def := config.Default().Data
	dataFetchCmd.Flags().StringVarP(&fetchSymbol, "symbol", "s", def.Symbol, "trading pair, e.g. BTCUSDT")
	dataFetchCmd.Flags().StringVarP(&fetchInterval, "interval", "i", def.Interval, "kline interval (1m, 1h, 1d, ...)")
	dataFetchCmd.Flags().StringVar(&fetchStart, "start", def.Start, "first day, YYYY-MM-DD")
	dataFetchCmd.Flags().StringVar(&fetchEnd, "end", "", "last day, YYYY-MM-DD (default today)")
	dataFetchCmd.Flags().StringVarP(&fetchDir, "dir", "d", def.Dir, "cache directory")
}

func runDataFetch(cmd *cobra.Command, args []string) error {
	interval, err := market.ParseInterval(fetchInterval)
	if err != nil {
		return err
	}
	start, err := time.Parse(config.DateLayout, fetchStart)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if fetchEnd != "" {
		if end, err = time.Parse(config.DateLayout, fetchEnd); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s", end.Format(config.DateLayout), start.Format(config.DateLayout))
	}

	log, closer, err := newLogger(config.Default().Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	cache := &data.Cache{
		Dir:      fetchDir,
		Provider: binance.NewClient(os.Getenv("BINANCE_API_KEY")),
		Log:      log,
		Save:     true,
	}
	bars, err := cache.Get(cmd.Context(), data.Request{
		Symbol:   fetchSymbol,
		Interval: interval,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %d bars in %s\n", bars.Len(), cache.Path(fetchSymbol, interval))
	if first, ok := bars.First(); ok {
		last, _ := bars.Last()
		fmt.Fprintf(out, "  %s .. %s\n", first.Time.Format(time.RFC3339), last.Time.Format(time.RFC3339))
	}
	return nil
}
