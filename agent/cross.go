package agent

import (
	"context"
	"fmt"

	"github.com/rustyeddy/tradeenv/env"
	"github.com/rustyeddy/tradeenv/indicators"
)

// Cross trades a fast/slow moving average crossover of the open price.
//   - Enters only on cross
//   - Reverses on opposite cross (sells what is held plus Volume)
type Cross struct {
	Volume float64

	fast indicators.Indicator
	slow indicators.Indicator

	lastDiff     float64
	haveLastDiff bool
}

// NewEMACross crosses two exponential moving averages.
func NewEMACross(fast, slow int, volume float64) (*Cross, error) {
	if err := checkPeriods("ema-cross", fast, slow); err != nil {
		return nil, err
	}
	return newCross(indicators.NewEMA(fast), indicators.NewEMA(slow), volume), nil
}

// NewSMACross crosses two simple moving averages.
func NewSMACross(fast, slow int, volume float64) (*Cross, error) {
	if err := checkPeriods("sma-cross", fast, slow); err != nil {
		return nil, err
	}
	return newCross(indicators.NewMA(fast), indicators.NewMA(slow), volume), nil
}

func checkPeriods(name string, fast, slow int) error {
	if fast <= 0 || slow <= 0 {
		return fmt.Errorf("%s: periods must be positive, got %d/%d", name, fast, slow)
	}
	if fast >= slow {
		return fmt.Errorf("%s: fast period %d must be below slow period %d", name, fast, slow)
	}
	return nil
}

func newCross(fast, slow indicators.Indicator, volume float64) *Cross {
	if volume <= 0 {
		volume = 1
	}
	return &Cross{Volume: volume, fast: fast, slow: slow}
}

// Name is e.g. "EMA(10)/EMA(30)".
func (s *Cross) Name() string {
	return s.fast.Name() + "/" + s.slow.Name()
}

func (s *Cross) Decide(ctx context.Context, obs env.Observation) (Decision, error) {
	s.fast.Update(obs.Bar.Open)
	s.slow.Update(obs.Bar.Open)

	if !s.fast.Ready() || !s.slow.Ready() {
		return Decision{Action: env.Hold}, nil
	}

	diff := s.fast.Value() - s.slow.Value()

	// Need a previous diff to detect a cross.
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		return Decision{Action: env.Hold}, nil
	}

	bullCross := diff > 0 && s.lastDiff <= 0
	bearCross := diff < 0 && s.lastDiff >= 0
	s.lastDiff = diff

	var want env.Action
	switch {
	case bullCross:
		want = env.Long
	case bearCross:
		want = env.Short
	default:
		return Decision{Action: env.Hold}, nil
	}

	pos := obs.Position
	switch {
	case pos.IsFlat():
		return Decision{Action: want, Volume: s.Volume}, nil
	case pos.Side().Exit() != want:
		// Already positioned in the direction of the cross.
		return Decision{Action: env.Hold}, nil
	default:
		return Decision{Action: want, Volume: pos.Volume() + s.Volume}, nil
	}
}

func (s *Cross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
	s.lastDiff = 0
	s.haveLastDiff = false
}
