package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals runs into a single database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, episode, created, symbol, interval, agent, initial_balance, fee,
		 steps, transactions, rejected, stop_loss, end_balance, end_portfolio, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Episode, r.Created, r.Symbol, r.Interval, r.Agent, r.InitialBalance, r.Fee,
		r.Steps, r.Transactions, r.Rejected, r.StopLoss, r.EndBalance, r.EndPortfolio, r.Start, r.End,
	)
	return err
}

func (j *SQLite) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, run_id, episode, step, time, kind, side, volume, price, amount, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.RunID, t.Episode, t.Step, t.Time, t.Kind, t.Side,
		t.Volume, t.Price, t.Amount, t.Balance,
	)
	return err
}

func (j *SQLite) RecordStep(s StepSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO steps
		(run_id, episode, step, time, requested, effective, volume, price, balance,
		 portfolio_value, side, position_volume, entry_price, done)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Episode, s.Step, s.Time, s.Action, s.Effective, s.Volume, s.Price, s.Balance,
		s.PortfolioValue, s.Side, s.PositionVolume, s.EntryPrice, s.Done,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
