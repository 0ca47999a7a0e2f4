package env

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/tradeenv/market"
)

var (
	ErrNoBars        = errors.New("env: bar sequence is empty")
	ErrInvalidAction = errors.New("env: invalid action")
	ErrNoTransition  = errors.New("env: no transition for action and position")
	ErrEndOfBars     = errors.New("env: no bars left")
	ErrEpisodeOver   = errors.New("env: episode is over, call Reset")
)

// Env is a single asset trading account replayed over a fixed bar
// sequence. It is not safe for concurrent use; each episode owns one Env.
type Env struct {
	bars           market.Bars
	initialBalance float64
	fee            float64
	listener       Listener

	balance   float64
	pos       Position
	portfolio float64
	step      int
	done      bool

	events []Event
}

// Option configures an Env.
type Option func(*Env)

// WithListener forwards every transaction event to l.
func WithListener(l Listener) Option {
	return func(e *Env) { e.listener = l }
}

// New creates an account over bars and resets it.
func New(bars market.Bars, initialBalance, fee float64, opts ...Option) (*Env, error) {
	if bars == nil || bars.Len() == 0 {
		return nil, ErrNoBars
	}
	if fee < 0 {
		return nil, fmt.Errorf("env: transaction fee must not be negative, got %v", fee)
	}

	e := &Env{
		bars:           bars,
		initialBalance: initialBalance,
		fee:            fee,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e, nil
}

// Reset starts a new episode over the same bars.
func (e *Env) Reset() {
	e.balance = e.initialBalance
	e.pos = Flat()
	e.portfolio = 0
	e.step = 0
	e.done = false
	e.events = nil
}

// StepResult is what Step reports back to the driver. Action is the
// action that actually took effect, which is Hold when the request was
// rejected or could not be afforded, and the liquidating side when the
// stop loss fired.
type StepResult struct {
	Done    bool
	Balance float64
	Action  Action
	Events  []Event
}

// Step applies one decision at the open price of the current bar and
// advances to the next bar.
//
// A non-hold action with a non-positive or non-finite volume is rejected: the account
// is left untouched apart from the bar advance and the result carries
// Hold. When the stop loss fires the position is liquidated, the request
// is discarded and Done is set.
func (e *Env) Step(a Action, volume float64) (StepResult, error) {
	if !a.valid() {
		return StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	if e.done {
		return StepResult{}, ErrEpisodeOver
	}
	if e.step >= e.bars.Len() {
		return StepResult{}, ErrEndOfBars
	}

	e.events = nil
	price := e.bars.Bar(e.step).Open

	if a != Hold && !validVolume(volume) {
		e.emit(Event{Kind: EventRejected, Side: sideOf(a), Volume: volume, Price: price})
		e.portfolio = PortfolioValue(e.pos, price)
		return e.advance(Hold), nil
	}

	e.portfolio = PortfolioValue(e.pos, price)

	if e.stopLossHit() {
		eff := e.liquidate(price)
		e.portfolio = PortfolioValue(e.pos, price)
		e.done = true
		return e.advance(eff), nil
	}

	eff, err := e.transition(a, volume, price)
	if err != nil {
		return StepResult{}, err
	}

	e.portfolio = PortfolioValue(e.pos, price)
	return e.advance(eff), nil
}

func validVolume(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (e *Env) advance(eff Action) StepResult {
	e.step++
	return StepResult{
		Done:    e.done,
		Balance: e.balance,
		Action:  eff,
		Events:  e.events,
	}
}

// transition is the action x side table. Every cell is listed so a
// missing one falls through to ErrNoTransition.
func (e *Env) transition(a Action, volume, price float64) (Action, error) {
	switch e.pos.Side() {
	case None:
		switch a {
		case Long, Short:
			return e.openNewPosition(a, volume, price), nil
		case Hold:
			return e.hold(), nil
		}
	case LongSide:
		switch a {
		case Long:
			return e.buyMore(a, volume, price), nil
		case Hold:
			return e.hold(), nil
		case Short:
			return e.sell(a, volume, price), nil
		}
	case ShortSide:
		switch a {
		case Short:
			return e.buyMore(a, volume, price), nil
		case Hold:
			return e.hold(), nil
		case Long:
			return e.sell(a, volume, price), nil
		}
	}
	return Hold, fmt.Errorf("%w: %s with %s position", ErrNoTransition, a, e.pos.Side())
}

func (e *Env) emit(ev Event) {
	ev.Step = e.step
	ev.Time = e.bars.Bar(e.step).Time
	ev.Balance = e.balance
	e.events = append(e.events, ev)
	if e.listener != nil {
		e.listener.OnEvent(ev)
	}
}

// Observation is a read-only snapshot handed to a decision maker.
type Observation struct {
	Step           int
	Bar            market.Bar
	Prev           market.Bar
	HasPrev        bool
	Balance        float64
	PortfolioValue float64
	Position       Position
}

// Observe returns the state the next Step will act on. Bar is the zero
// value once the sequence is exhausted; Prev is the last bar stepped over.
func (e *Env) Observe() Observation {
	obs := Observation{
		Step:           e.step,
		Balance:        e.balance,
		PortfolioValue: e.portfolio,
		Position:       e.pos,
	}
	if e.step < e.bars.Len() {
		obs.Bar = e.bars.Bar(e.step)
	}
	obs.Prev, obs.HasPrev = e.History(e.step - 1)
	return obs
}

// History returns bar i if it has already been stepped over.
func (e *Env) History(i int) (market.Bar, bool) {
	if i < 0 || i >= e.step || i >= e.bars.Len() {
		return market.Bar{}, false
	}
	return e.bars.Bar(i), true
}

func (e *Env) Balance() float64 { return e.balance }

func (e *Env) PortfolioValue() float64 { return e.portfolio }

// Equity is balance plus the marked position.
func (e *Env) Equity() float64 { return e.balance + e.portfolio }

func (e *Env) Position() Position { return e.pos }

func (e *Env) StepIndex() int { return e.step }

func (e *Env) Done() bool { return e.done }

func (e *Env) Fee() float64 { return e.fee }

func (e *Env) InitialBalance() float64 { return e.initialBalance }

// Remaining is the number of bars left to step over.
func (e *Env) Remaining() int { return e.bars.Len() - e.step }
