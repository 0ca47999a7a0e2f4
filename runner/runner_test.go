package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeenv/agent"
	"github.com/rustyeddy/tradeenv/env"
	"github.com/rustyeddy/tradeenv/journal"
	"github.com/rustyeddy/tradeenv/market"
)

type memJournal struct {
	runs  []journal.RunRecord
	txs   []journal.TransactionRecord
	steps []journal.StepSnapshot
}

func (m *memJournal) RecordRun(r journal.RunRecord) error {
	m.runs = append(m.runs, r)
	return nil
}

func (m *memJournal) RecordTransaction(t journal.TransactionRecord) error {
	m.txs = append(m.txs, t)
	return nil
}

func (m *memJournal) RecordStep(s journal.StepSnapshot) error {
	m.steps = append(m.steps, s)
	return nil
}

func (m *memJournal) Close() error { return nil }

func barsAt(opens ...float64) *market.BarSet {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(opens))
	for i, o := range opens {
		bars[i] = market.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: o, High: o, Low: o, Close: o}
	}
	return market.NewBarSet("BTCUSDT", market.Interval1h, bars)
}

func TestRunScriptedEpisode(t *testing.T) {
	t.Parallel()

	e, err := env.New(barsAt(10, 20, 30), 100, 1)
	require.NoError(t, err)

	j := &memJournal{}
	r := &Runner{
		Env: e,
		Agent: agent.NewScript([]agent.Decision{
			{Action: env.Long, Volume: 5},
			{Action: env.Short, Volume: 5},
		}),
		Journal:   j,
		RunID:     "run-1",
		Symbol:    "BTCUSDT",
		Interval:  "1h",
		AgentName: "script",
	}

	res, err := r.Run(context.Background(), 0)
	require.NoError(t, err)

	// open 5 @ 10 (-50, fee -1), close 5 @ 20 (+100, fee -1), hold
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, 2, res.Transactions)
	assert.False(t, res.StopLoss)
	assert.InDelta(t, 148, res.EndBalance, 1e-9)
	assert.InDelta(t, 0, res.EndPortfolio, 1e-9)
	assert.InDelta(t, 48, res.ReturnPct(), 1e-9)
	assert.Equal(t, barsAt(10).Bar(0).Time, res.Start)

	require.Len(t, j.steps, 3)
	assert.Equal(t, "long", j.steps[0].Action)
	assert.Equal(t, "long", j.steps[0].Side)
	assert.InDelta(t, 5, j.steps[0].PositionVolume, 1e-9)
	assert.Equal(t, "hold", j.steps[2].Effective)

	require.Len(t, j.txs, 4)
	assert.Equal(t, "open", j.txs[0].Kind)
	assert.Equal(t, "close", j.txs[2].Kind)
	for _, tx := range j.txs {
		assert.Equal(t, "run-1", tx.RunID)
		assert.NotEmpty(t, tx.ID)
	}

	require.Len(t, j.runs, 1)
	assert.Equal(t, "script", j.runs[0].Agent)
	assert.Equal(t, 3, j.runs[0].Steps)
	assert.Equal(t, 2, j.runs[0].Transactions)
	assert.InDelta(t, 48, j.runs[0].NetPL(), 1e-9)
}

func TestRunStopsOnStopLoss(t *testing.T) {
	t.Parallel()

	// Long 9 @ 10 with a fee of 10 leaves the balance at zero.
	e, err := env.New(barsAt(10, 10, 10, 10), 100, 10)
	require.NoError(t, err)

	j := &memJournal{}
	r := &Runner{
		Env:     e,
		Agent:   agent.NewScript([]agent.Decision{{Action: env.Long, Volume: 9}}),
		Journal: j,
	}

	res, err := r.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.True(t, res.StopLoss)
	assert.Equal(t, 2, res.Steps)
	assert.True(t, j.steps[len(j.steps)-1].Done)
	assert.NotEmpty(t, r.RunID)
	require.Len(t, j.runs, 1)
	assert.True(t, j.runs[0].StopLoss)
}

func TestRunCountsRejected(t *testing.T) {
	t.Parallel()

	e, err := env.New(barsAt(10, 11), 100, 0)
	require.NoError(t, err)

	r := &Runner{
		Env:   e,
		Agent: agent.NewScript([]agent.Decision{{Action: env.Long, Volume: 0}}),
	}
	res, err := r.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 0, res.Transactions)
	assert.Equal(t, 2, res.Steps)
	assert.InDelta(t, 100, res.Equity(), 1e-9)
}

func TestRunEpisodesResetsAgent(t *testing.T) {
	t.Parallel()

	e, err := env.New(barsAt(10, 12, 14), 100, 0)
	require.NoError(t, err)

	j := &memJournal{}
	r := &Runner{
		Env:     e,
		Agent:   agent.NewScript([]agent.Decision{{Action: env.Long, Volume: 1}}),
		Journal: j,
		RunID:   "multi",
	}

	results, err := r.RunEpisodes(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, i, res.Episode)
		assert.Equal(t, results[0].EndBalance, res.EndBalance)
		assert.Equal(t, results[0].EndPortfolio, res.EndPortfolio)
	}
	assert.Len(t, j.runs, 3)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	e, err := env.New(barsAt(10, 11), 100, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Env: e, Agent: agent.Hold{}}
	_, err = r.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingAgent struct{}

func (failingAgent) Decide(context.Context, env.Observation) (agent.Decision, error) {
	return agent.Decision{}, errors.New("boom")
}

func TestRunAgentError(t *testing.T) {
	t.Parallel()

	e, err := env.New(barsAt(10), 100, 0)
	require.NoError(t, err)

	r := &Runner{Env: e, Agent: failingAgent{}}
	_, err = r.Run(context.Background(), 0)
	assert.ErrorContains(t, err, "boom")
}

func TestRunRequiresEnvAndAgent(t *testing.T) {
	t.Parallel()

	_, err := (&Runner{Agent: agent.Hold{}}).Run(context.Background(), 0)
	assert.Error(t, err)

	e, err := env.New(barsAt(10), 100, 0)
	require.NoError(t, err)
	_, err = (&Runner{Env: e}).Run(context.Background(), 0)
	assert.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintResult(&buf, Result{
		RunID:        "abc",
		Episode:      2,
		Steps:        10,
		StartBalance: 100,
		EndBalance:   90,
		EndPortfolio: 30,
	})

	out := buf.String()
	assert.Contains(t, out, "Episode 2")
	assert.Contains(t, out, "Run ID:        abc")
	assert.Contains(t, out, "Equity:        120.00")
	assert.Contains(t, out, "Return:        20.00%")
}
