package journal

import "time"

// RunRecord summarizes one episode of a run.
type RunRecord struct {
	RunID    string
	Episode  int
	Created  time.Time
	Symbol   string
	Interval string
	Agent    string

	InitialBalance float64
	Fee            float64

	Steps        int
	Transactions int
	Rejected     int
	StopLoss     bool

	EndBalance   float64
	EndPortfolio float64

	Start time.Time
	End   time.Time
}

// NetPL is the change in equity over the episode.
func (r RunRecord) NetPL() float64 {
	return r.EndBalance + r.EndPortfolio - r.InitialBalance
}

// TransactionRecord is one account event: an open, add, reduce, close,
// fee, stop loss or rejected request.
type TransactionRecord struct {
	ID      string
	RunID   string
	Episode int
	Step    int
	Time    time.Time
	Kind    string
	Side    string
	Volume  float64
	Price   float64
	Amount  float64
	Balance float64
}

// StepSnapshot is the account state after a step.
type StepSnapshot struct {
	RunID          string
	Episode        int
	Step           int
	Time           time.Time
	Action         string
	Effective      string
	Volume         float64
	Price          float64
	Balance        float64
	PortfolioValue float64
	Side           string
	PositionVolume float64
	EntryPrice     float64
	Done           bool
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTransaction(TransactionRecord) error
	RecordStep(StepSnapshot) error
	Close() error
}

// Discard is a Journal that drops everything.
type Discard struct{}

func (Discard) RecordRun(RunRecord) error                 { return nil }
func (Discard) RecordTransaction(TransactionRecord) error { return nil }
func (Discard) RecordStep(StepSnapshot) error             { return nil }
func (Discard) Close() error                              { return nil }
