package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	runsHeader = []string{"run_id", "episode", "created", "symbol", "interval", "agent",
		"initial_balance", "fee", "steps", "transactions", "rejected", "stop_loss",
		"end_balance", "end_portfolio", "start", "end"}
	transactionsHeader = []string{"id", "run_id", "episode", "step", "time", "kind", "side",
		"volume", "price", "amount", "balance"}
	stepsHeader = []string{"run_id", "episode", "step", "time", "action", "effective", "volume",
		"price", "balance", "portfolio_value", "side", "position_volume", "entry_price", "done"}
)

// CSV journals into runs.csv, transactions.csv and steps.csv inside a
// directory.
type CSV struct {
	runs, transactions, steps *csv.Writer
	files                     []*os.File
}

func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSV{}
	var err error
	if j.runs, err = j.create(filepath.Join(dir, "runs.csv"), runsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.transactions, err = j.create(filepath.Join(dir, "transactions.csv"), transactionsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.steps, err = j.create(filepath.Join(dir, "steps.csv"), stepsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSV) create(path string, header []string) (*csv.Writer, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	j.files = append(j.files, fh)

	w := csv.NewWriter(fh)
	if err := writeRow(w, header); err != nil {
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return w, nil
}

func (j *CSV) RecordRun(r RunRecord) error {
	return writeRow(j.runs, []string{
		r.RunID,
		strconv.Itoa(r.Episode),
		ts(r.Created),
		r.Symbol,
		r.Interval,
		r.Agent,
		f(r.InitialBalance),
		f(r.Fee),
		strconv.Itoa(r.Steps),
		strconv.Itoa(r.Transactions),
		strconv.Itoa(r.Rejected),
		strconv.FormatBool(r.StopLoss),
		f(r.EndBalance),
		f(r.EndPortfolio),
		ts(r.Start),
		ts(r.End),
	})
}

func (j *CSV) RecordTransaction(t TransactionRecord) error {
	return writeRow(j.transactions, []string{
		t.ID,
		t.RunID,
		strconv.Itoa(t.Episode),
		strconv.Itoa(t.Step),
		ts(t.Time),
		t.Kind,
		t.Side,
		f(t.Volume),
		f(t.Price),
		f(t.Amount),
		f(t.Balance),
	})
}

func (j *CSV) RecordStep(s StepSnapshot) error {
	return writeRow(j.steps, []string{
		s.RunID,
		strconv.Itoa(s.Episode),
		strconv.Itoa(s.Step),
		ts(s.Time),
		s.Action,
		s.Effective,
		f(s.Volume),
		f(s.Price),
		f(s.Balance),
		f(s.PortfolioValue),
		s.Side,
		f(s.PositionVolume),
		f(s.EntryPrice),
		strconv.FormatBool(s.Done),
	})
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.transactions, j.steps} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSV) closeFiles() error {
	var first error
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
