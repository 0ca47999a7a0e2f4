package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rustyeddy/tradeenv/env"
)

// Decision is what an agent hands to env.Step.
type Decision struct {
	Action env.Action
	Volume float64
}

// Agent is any policy that maps an observation to a decision.
type Agent interface {
	Decide(ctx context.Context, obs env.Observation) (Decision, error)
}

// Resetter is implemented by agents that keep per-episode state.
type Resetter interface {
	Reset()
}

// Options carries the knobs the built-in agents understand.
type Options struct {
	Seed      int64
	MaxVolume int
	Volume    float64
	Script    string
	Fast      int
	Slow      int
}

// ByName builds one of the built-in agents.
func ByName(name string, opts Options) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hold", "noop", "none":
		return Hold{}, nil

	case "random":
		if opts.MaxVolume < 1 {
			return nil, fmt.Errorf("random agent: max volume must be at least 1")
		}
		return NewRandom(opts.Seed, opts.MaxVolume), nil

	case "momentum":
		vol := opts.Volume
		if vol <= 0 {
			vol = 1
		}
		return &Momentum{Volume: vol}, nil

	case "ema-cross":
		c, err := NewEMACross(opts.Fast, opts.Slow, opts.Volume)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "sma-cross":
		c, err := NewSMACross(opts.Fast, opts.Slow, opts.Volume)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "script":
		decisions, err := LoadScript(opts.Script)
		if err != nil {
			return nil, fmt.Errorf("script agent: %w", err)
		}
		return NewScript(decisions), nil

	default:
		return nil, fmt.Errorf("unknown agent %q (supported: hold, random, momentum, ema-cross, sma-cross, script)", name)
	}
}

// Hold never trades.
type Hold struct{}

func (Hold) Decide(ctx context.Context, obs env.Observation) (Decision, error) {
	return Decision{Action: env.Hold}, nil
}

// Random picks a uniform action and a whole volume in [1, MaxVolume].
type Random struct {
	rng       *rand.Rand
	maxVolume int
}

func NewRandom(seed int64, maxVolume int) *Random {
	return &Random{
		rng:       rand.New(rand.NewSource(seed)),
		maxVolume: maxVolume,
	}
}

func (r *Random) Decide(ctx context.Context, obs env.Observation) (Decision, error) {
	a := env.Action(r.rng.Intn(3) - 1)
	vol := float64(1 + r.rng.Intn(r.maxVolume))
	return Decision{Action: a, Volume: vol}, nil
}

// Momentum follows the move from the previous bar's open to the current one.
type Momentum struct {
	Volume float64
}

func (m *Momentum) Decide(ctx context.Context, obs env.Observation) (Decision, error) {
	switch {
	case !obs.HasPrev || obs.Bar.Open == obs.Prev.Open:
		return Decision{Action: env.Hold}, nil
	case obs.Bar.Open > obs.Prev.Open:
		return Decision{Action: env.Long, Volume: m.Volume}, nil
	default:
		return Decision{Action: env.Short, Volume: m.Volume}, nil
	}
}
