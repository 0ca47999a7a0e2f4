package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeenv/config"
	"github.com/rustyeddy/tradeenv/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "A single asset trading environment for backtests and RL agents",
	Long: `Trader replays a bar sequence through a simulated trading account.

It provides tools for:
  - Running agents episode by episode against historical bars
  - Downloading and caching Binance klines as CSV
  - Journaling every transaction and step to SQLite or CSV
  - Generating and validating run configurations`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// BINANCE_API_KEY may live in a .env file; a missing file is fine.
		_ = godotenv.Load()
	},
}

var logLevel string

// Execute adds all child commands to the root command and runs it until
// it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

// newLogger applies the --log-level override to lc.
func newLogger(lc config.LogConfig) (*logrus.Logger, io.Closer, error) {
	if logLevel != "" {
		lc.Level = logLevel
	}
	return logging.New(lc, os.Stderr)
}
