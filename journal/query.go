package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, episode, created, symbol, interval, agent, initial_balance, fee,
	steps, transactions, rejected, stop_loss, end_balance, end_portfolio, start_time, end_time`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Episode, &r.Created, &r.Symbol, &r.Interval, &r.Agent,
		&r.InitialBalance, &r.Fee, &r.Steps, &r.Transactions, &r.Rejected,
		&r.StopLoss, &r.EndBalance, &r.EndPortfolio, &r.Start, &r.End,
	)
	return r, err
}

// GetRun returns one episode of a run.
func (j *SQLite) GetRun(runID string, episode int) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ? AND episode = ?`, runID, episode)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q episode %d not found", runID, episode)
	}
	if err != nil {
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns every journaled episode, newest run first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY run_id DESC, episode ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions returns the transactions of a run in the order they
// happened.
func (j *SQLite) ListTransactions(runID string) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, episode, step, time, kind, side, volume, price, amount, balance
		FROM transactions
		WHERE run_id = ?
		ORDER BY episode ASC, step ASC, id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var t TransactionRecord
		if err := rows.Scan(
			&t.ID, &t.RunID, &t.Episode, &t.Step, &t.Time, &t.Kind, &t.Side,
			&t.Volume, &t.Price, &t.Amount, &t.Balance,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSteps returns the step snapshots of one episode.
func (j *SQLite) ListSteps(runID string, episode int) ([]StepSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, episode, step, time, requested, effective, volume, price, balance,
		       portfolio_value, side, position_volume, entry_price, done
		FROM steps
		WHERE run_id = ? AND episode = ?
		ORDER BY step ASC`, runID, episode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepSnapshot
	for rows.Next() {
		var s StepSnapshot
		if err := rows.Scan(
			&s.RunID, &s.Episode, &s.Step, &s.Time, &s.Action, &s.Effective, &s.Volume,
			&s.Price, &s.Balance, &s.PortfolioValue, &s.Side, &s.PositionVolume,
			&s.EntryPrice, &s.Done,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
