package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders an episode and its transactions as an Org-mode
// block, with the structured facts in a PROPERTIES drawer.
func FormatRunOrg(r RunRecord, txs []TransactionRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "* RUN: %s %s %s (%s #%d)\n", r.Agent, r.Symbol, r.Interval, shortID(r.RunID), r.Episode)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID:      %s\n", r.RunID)
	fmt.Fprintf(&b, ":EPISODE:     %d\n", r.Episode)
	fmt.Fprintf(&b, ":SYMBOL:      %s\n", r.Symbol)
	fmt.Fprintf(&b, ":INTERVAL:    %s\n", r.Interval)
	fmt.Fprintf(&b, ":AGENT:       %s\n", r.Agent)
	fmt.Fprintf(&b, ":START:       %s\n", r.Start.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":END:         %s\n", r.End.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":STEPS:       %d\n", r.Steps)
	fmt.Fprintf(&b, ":START_BAL:   %.2f\n", r.InitialBalance)
	fmt.Fprintf(&b, ":END_BAL:     %.2f\n", r.EndBalance)
	fmt.Fprintf(&b, ":END_PORT:    %.2f\n", r.EndPortfolio)
	fmt.Fprintf(&b, ":NET_PL:      %.2f\n", r.NetPL())
	fmt.Fprintf(&b, ":STOP_LOSS:   %t\n", r.StopLoss)
	b.WriteString(":END:\n")

	if len(txs) == 0 {
		return b.String()
	}

	b.WriteString("\n** Transactions\n")
	b.WriteString("| step | kind | side | volume | price | amount | balance |\n")
	b.WriteString("|------+------+------+--------+-------+--------+---------|\n")
	for _, t := range txs {
		if t.Episode != r.Episode {
			continue
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %.4f | %.4f | %.2f | %.2f |\n",
			t.Step, t.Kind, t.Side, t.Volume, t.Price, t.Amount, t.Balance)
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
