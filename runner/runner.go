package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/tradeenv/agent"
	"github.com/rustyeddy/tradeenv/env"
	"github.com/rustyeddy/tradeenv/id"
	"github.com/rustyeddy/tradeenv/internal/logging"
	"github.com/rustyeddy/tradeenv/journal"
)

// Runner drives one Env with one Agent. Each episode starts from Reset
// and steps until the stop loss fires or the bars run out.
type Runner struct {
	Env     *env.Env
	Agent   agent.Agent
	Journal journal.Journal
	Log     logrus.FieldLogger

	RunID     string
	Symbol    string
	Interval  string
	AgentName string
}

// Result summarizes an episode. Transactions counts trades (open, add,
// reduce, close); fees and stop loss markers are journaled but not counted.
type Result struct {
	RunID   string
	Episode int

	Steps        int
	Transactions int
	Rejected     int
	StopLoss     bool

	StartBalance float64
	EndBalance   float64
	EndPortfolio float64

	Start time.Time
	End   time.Time
}

// Equity is the final balance plus the marked position.
func (r Result) Equity() float64 {
	return r.EndBalance + r.EndPortfolio
}

// ReturnPct is the equity change as a percentage of the start balance.
func (r Result) ReturnPct() float64 {
	if r.StartBalance == 0 {
		return 0
	}
	return (r.Equity() - r.StartBalance) / r.StartBalance * 100
}

func (r *Runner) check() error {
	if r.Env == nil {
		return errors.New("runner: Env is required")
	}
	if r.Agent == nil {
		return errors.New("runner: Agent is required")
	}
	if r.Journal == nil {
		r.Journal = journal.Discard{}
	}
	if r.Log == nil {
		r.Log = logging.Discard()
	}
	if r.RunID == "" {
		r.RunID = id.New()
	}
	return nil
}

// Run plays one episode:
//  1. reset the account and the agent
//  2. observe, decide, step, journal
//  3. stop on stop loss or when the bars are exhausted
func (r *Runner) Run(ctx context.Context, episode int) (Result, error) {
	if err := r.check(); err != nil {
		return Result{}, err
	}

	r.Env.Reset()
	if rs, ok := r.Agent.(agent.Resetter); ok {
		rs.Reset()
	}

	log := r.Log.WithFields(logrus.Fields{"run": r.RunID, "episode": episode})
	res := Result{
		RunID:        r.RunID,
		Episode:      episode,
		StartBalance: r.Env.InitialBalance(),
	}

	for r.Env.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		obs := r.Env.Observe()
		if res.Steps == 0 {
			res.Start = obs.Bar.Time
		}
		res.End = obs.Bar.Time

		d, err := r.Agent.Decide(ctx, obs)
		if err != nil {
			return res, fmt.Errorf("agent decide at step %d: %w", obs.Step, err)
		}

		sr, err := r.Env.Step(d.Action, d.Volume)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", obs.Step, err)
		}
		res.Steps++

		for _, ev := range sr.Events {
			if err := r.recordEvent(episode, ev); err != nil {
				return res, err
			}
			switch {
			case ev.Kind.IsTrade():
				res.Transactions++
			case ev.Kind == env.EventRejected:
				res.Rejected++
			}
			log.WithFields(logrus.Fields{
				"step":    ev.Step,
				"kind":    ev.Kind,
				"side":    ev.Side,
				"volume":  ev.Volume,
				"price":   ev.Price,
				"amount":  ev.Amount,
				"balance": ev.Balance,
			}).Debug("transaction")
		}

		if err := r.recordStep(episode, obs, d, sr); err != nil {
			return res, err
		}

		if sr.Done {
			res.StopLoss = true
			log.WithFields(logrus.Fields{"step": obs.Step, "balance": sr.Balance}).Warn("stop loss, episode over")
			break
		}
	}

	res.EndBalance = r.Env.Balance()
	res.EndPortfolio = r.Env.PortfolioValue()

	if err := r.Journal.RecordRun(journal.RunRecord{
		RunID:          r.RunID,
		Episode:        episode,
		Created:        time.Now().UTC(),
		Symbol:         r.Symbol,
		Interval:       r.Interval,
		Agent:          r.AgentName,
		InitialBalance: res.StartBalance,
		Fee:            r.Env.Fee(),
		Steps:          res.Steps,
		Transactions:   res.Transactions,
		Rejected:       res.Rejected,
		StopLoss:       res.StopLoss,
		EndBalance:     res.EndBalance,
		EndPortfolio:   res.EndPortfolio,
		Start:          res.Start,
		End:            res.End,
	}); err != nil {
		return res, fmt.Errorf("record run: %w", err)
	}

	log.WithFields(logrus.Fields{
		"steps":   res.Steps,
		"balance": res.EndBalance,
		"equity":  res.Equity(),
	}).Info("episode finished")
	return res, nil
}

// RunEpisodes plays n independent episodes over the same bars.
func (r *Runner) RunEpisodes(ctx context.Context, n int) ([]Result, error) {
	out := make([]Result, 0, n)
	for ep := 0; ep < n; ep++ {
		res, err := r.Run(ctx, ep)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Runner) recordEvent(episode int, ev env.Event) error {
	err := r.Journal.RecordTransaction(journal.TransactionRecord{
		ID:      id.New(),
		RunID:   r.RunID,
		Episode: episode,
		Step:    ev.Step,
		Time:    ev.Time,
		Kind:    string(ev.Kind),
		Side:    ev.Side.String(),
		Volume:  ev.Volume,
		Price:   ev.Price,
		Amount:  ev.Amount,
		Balance: ev.Balance,
	})
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

func (r *Runner) recordStep(episode int, obs env.Observation, d agent.Decision, sr env.StepResult) error {
	pos := r.Env.Position()
	err := r.Journal.RecordStep(journal.StepSnapshot{
		RunID:          r.RunID,
		Episode:        episode,
		Step:           obs.Step,
		Time:           obs.Bar.Time,
		Action:         d.Action.String(),
		Effective:      sr.Action.String(),
		Volume:         d.Volume,
		Price:          obs.Bar.Open,
		Balance:        sr.Balance,
		PortfolioValue: r.Env.PortfolioValue(),
		Side:           pos.Side().String(),
		PositionVolume: pos.Volume(),
		EntryPrice:     pos.EntryPrice(),
		Done:           sr.Done,
	})
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}
