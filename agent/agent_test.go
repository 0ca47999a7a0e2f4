package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/tradeenv/env"
	"github.com/rustyeddy/tradeenv/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obsAt(open float64) env.Observation {
	return env.Observation{Bar: market.Bar{Open: open}}
}

func TestHold(t *testing.T) {
	d, err := Hold{}.Decide(context.Background(), obsAt(10))
	assert.NoError(t, err)
	assert.Equal(t, env.Hold, d.Action)
}

func TestRandomIsSeeded(t *testing.T) {
	a := NewRandom(7, 4)
	b := NewRandom(7, 4)
	ctx := context.Background()

	seen := map[env.Action]bool{}
	for i := 0; i < 200; i++ {
		da, err := a.Decide(ctx, obsAt(10))
		require.NoError(t, err)
		db, err := b.Decide(ctx, obsAt(10))
		require.NoError(t, err)

		assert.Equal(t, da, db)
		assert.GreaterOrEqual(t, da.Volume, 1.0)
		assert.LessOrEqual(t, da.Volume, 4.0)
		seen[da.Action] = true
	}
	assert.Len(t, seen, 3)
}

func TestMomentum(t *testing.T) {
	m := &Momentum{Volume: 2}
	ctx := context.Background()

	want := []Decision{
		{Action: env.Hold},
		{Action: env.Long, Volume: 2},
		{Action: env.Long, Volume: 2},
		{Action: env.Short, Volume: 2},
		{Action: env.Hold},
	}
	opens := []float64{10, 11, 12, 9, 9}
	for i, open := range opens {
		obs := obsAt(open)
		if i > 0 {
			obs.Prev = market.Bar{Open: opens[i-1]}
			obs.HasPrev = true
		}
		d, err := m.Decide(ctx, obs)
		require.NoError(t, err)
		assert.Equal(t, want[i], d, "bar %d", i)
	}
}

func TestMomentumReadsEnvHistory(t *testing.T) {
	bars := []market.Bar{{Open: 10}, {Open: 12}, {Open: 11}}
	e, err := env.New(market.NewBarSet("X", market.Interval1d, bars), 1000, 0)
	require.NoError(t, err)

	m := &Momentum{Volume: 1}
	ctx := context.Background()
	var got []env.Action
	for e.Remaining() > 0 {
		d, err := m.Decide(ctx, e.Observe())
		require.NoError(t, err)
		got = append(got, d.Action)
		_, err = e.Step(d.Action, d.Volume)
		require.NoError(t, err)
	}
	assert.Equal(t, []env.Action{env.Hold, env.Long, env.Short}, got)
}

func TestScript(t *testing.T) {
	in := "action,volume\n1,5\n0, 0\n-1,5\n"
	decisions, err := ReadScript(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, decisions, 3)

	s := NewScript(decisions)
	ctx := context.Background()
	var got []Decision
	for i := 0; i < 4; i++ {
		d, err := s.Decide(ctx, obsAt(10))
		require.NoError(t, err)
		got = append(got, d)
	}
	assert.Equal(t, []Decision{
		{Action: env.Long, Volume: 5},
		{Action: env.Hold, Volume: 0},
		{Action: env.Short, Volume: 5},
		{Action: env.Hold},
	}, got)

	s.Reset()
	d, _ := s.Decide(ctx, obsAt(10))
	assert.Equal(t, env.Long, d.Action)
}

func TestReadScriptErrors(t *testing.T) {
	tests := map[string]string{
		"bad action":   "x,1\n",
		"out of range": "2,1\n",
		"bad volume":   "1,lots\n",
		"short row":    "1\n",
		"nan volume":   "1,NaN\n",
		"inf volume":   "-1,+Inf\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadScript(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestByName(t *testing.T) {
	a, err := ByName("hold", Options{})
	require.NoError(t, err)
	assert.IsType(t, Hold{}, a)

	a, err = ByName("Random", Options{Seed: 1, MaxVolume: 3})
	require.NoError(t, err)
	assert.IsType(t, &Random{}, a)

	_, err = ByName("random", Options{})
	assert.Error(t, err)

	a, err = ByName("momentum", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.(*Momentum).Volume)

	path := filepath.Join(t.TempDir(), "script.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2\n"), 0644))
	a, err = ByName("script", Options{Script: path})
	require.NoError(t, err)
	assert.IsType(t, &Script{}, a)

	_, err = ByName("script", Options{Script: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)

	_, err = ByName("oracle", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent")
}
