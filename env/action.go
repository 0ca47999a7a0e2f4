package env

import "fmt"

// Action is the decision handed to Step. The numeric values match the
// ternary signal emitted by agents: -1 short, 0 hold, 1 long.
type Action int

const (
	Short Action = -1
	Hold  Action = 0
	Long  Action = 1
)

// ActionFromSignal translates a raw {-1,0,1} signal into an Action.
func ActionFromSignal(sig int) (Action, error) {
	a := Action(sig)
	if !a.valid() {
		return Hold, fmt.Errorf("%w: %d", ErrInvalidAction, sig)
	}
	return a, nil
}

func (a Action) valid() bool {
	return a == Short || a == Hold || a == Long
}

func (a Action) String() string {
	switch a {
	case Short:
		return "short"
	case Hold:
		return "hold"
	case Long:
		return "long"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Side is the direction of the open position.
type Side int

const (
	None Side = iota
	LongSide
	ShortSide
)

func (s Side) String() string {
	switch s {
	case None:
		return "none"
	case LongSide:
		return "long"
	case ShortSide:
		return "short"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Exit is the action that closes a position on side s.
func (s Side) Exit() Action {
	switch s {
	case LongSide:
		return Short
	case ShortSide:
		return Long
	}
	return Hold
}

// sideOf maps a directional action onto the side it opens.
func sideOf(a Action) Side {
	switch a {
	case Long:
		return LongSide
	case Short:
		return ShortSide
	}
	return None
}
