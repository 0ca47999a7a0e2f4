package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeenv/agent"
	"github.com/rustyeddy/tradeenv/config"
	"github.com/rustyeddy/tradeenv/data"
	"github.com/rustyeddy/tradeenv/data/binance"
	"github.com/rustyeddy/tradeenv/env"
	"github.com/rustyeddy/tradeenv/id"
	"github.com/rustyeddy/tradeenv/journal"
	"github.com/rustyeddy/tradeenv/market"
	"github.com/rustyeddy/tradeenv/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an agent over historical bars",
	Long: `Run one or more episodes of an agent against a bar sequence using
settings from a configuration file.

Bars come from --bars or data.file when given, otherwise from the CSV cache
in data.dir, downloading from Binance on a miss.

Example:
  trader run -f run.yaml --episodes 5`,
	RunE: runRun,
}

var (
	runConfigPath string
	runEpisodes   int
	runBarsFile   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().IntVarP(&runEpisodes, "episodes", "n", 0, "number of episodes (overrides the config file)")
	runCmd.Flags().StringVar(&runBarsFile, "bars", "", "path to a bar CSV (overrides data.file)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runEpisodes > 0 {
		cfg.Episodes = runEpisodes
	}
	if runBarsFile != "" {
		cfg.Data.File = runBarsFile
	}

	log, closer, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()

	bars, err := loadBars(ctx, cfg, log)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	ag, err := agent.ByName(cfg.Agent.Name, agent.Options{
		Seed:      cfg.Agent.Seed,
		MaxVolume: cfg.Agent.MaxVolume,
		Volume:    cfg.Agent.Volume,
		Script:    cfg.Agent.Script,
		Fast:      cfg.Agent.Fast,
		Slow:      cfg.Agent.Slow,
	})
	if err != nil {
		return err
	}

	e, err := env.New(bars, cfg.Account.InitialBalance, cfg.Account.TransactionFee)
	if err != nil {
		return err
	}

	r := &runner.Runner{
		Env:       e,
		Agent:     ag,
		Journal:   j,
		Log:       log,
		RunID:     id.New(),
		Symbol:    cfg.Data.Symbol,
		Interval:  cfg.Data.Interval,
		AgentName: cfg.Agent.Name,
	}

	log.WithFields(logrus.Fields{
		"run":      r.RunID,
		"bars":     bars.Len(),
		"agent":    cfg.Agent.Name,
		"episodes": cfg.Episodes,
	}).Info("starting run")

	results, err := r.RunEpisodes(ctx, cfg.Episodes)
	for _, res := range results {
		runner.PrintResult(cmd.OutOrStdout(), res)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", r.RunID, err)
	}
	return nil
}

func loadBars(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*market.BarSet, error) {
	interval, err := market.ParseInterval(cfg.Data.Interval)
	if err != nil {
		return nil, err
	}

	if cfg.Data.File != "" {
		bars, err := market.LoadCSV(cfg.Data.File)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
		log.WithFields(logrus.Fields{"path": cfg.Data.File, "bars": len(bars)}).Info("loaded bars")
		return market.NewBarSet(cfg.Data.Symbol, interval, bars), nil
	}

	start, err := cfg.StartTime()
	if err != nil {
		return nil, fmt.Errorf("data.start: %w", err)
	}
	end, err := cfg.EndTime()
	if err != nil {
		return nil, fmt.Errorf("data.end: %w", err)
	}

	cache := &data.Cache{
		Dir:      cfg.Data.Dir,
		Provider: binance.NewClient(os.Getenv("BINANCE_API_KEY")),
		Log:      log,
		Save:     cfg.Data.Save,
	}
	return cache.Get(ctx, data.Request{
		Symbol:   cfg.Data.Symbol,
		Interval: interval,
		Start:    start,
		End:      end,
	})
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.Dir)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Discard{}, nil
	}
}
