package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeenv/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query run journal data",
	Long: `Query and display run records from a SQLite journal.

Subcommands:
  runs - List every recorded episode
  show - Show one episode with its transactions

Examples:
  trader journal runs
  trader journal show <run-id> 0`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id> [episode]",
	Short: "Show one episode and its transactions",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runJournalShow,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tradeenv.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tEP\tCREATED\tSYMBOL\tAGENT\tSTEPS\tNET P/L\tSTOP")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%.2f\t%t\n",
			r.RunID, r.Episode, r.Created.Format(time.RFC3339), r.Symbol, r.Agent, r.Steps, r.NetPL(), r.StopLoss)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	episode := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("episode: %w", err)
		}
		episode = n
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(args[0], episode)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	txs, err := j.ListTransactions(args[0])
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRunOrg(rec, txs))
	return nil
}
