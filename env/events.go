package env

import "time"

// EventKind names a transaction emitted by the account.
type EventKind string

const (
	EventOpen     EventKind = "open"
	EventAdd      EventKind = "add"
	EventReduce   EventKind = "reduce"
	EventClose    EventKind = "close"
	EventFee      EventKind = "fee"
	EventStopLoss EventKind = "stop_loss"
	EventRejected EventKind = "rejected"
)

// IsTrade reports whether k moves volume in or out of the position.
func (k EventKind) IsTrade() bool {
	switch k {
	case EventOpen, EventAdd, EventReduce, EventClose:
		return true
	}
	return false
}

// Event records one causal change to the account. Amount is the signed
// cash flow applied to the balance (costs and fees negative, proceeds
// positive); Balance is the balance after it was applied.
type Event struct {
	Kind    EventKind
	Step    int
	Time    time.Time
	Side    Side
	Volume  float64
	Price   float64
	Amount  float64
	Balance float64
}

// Listener receives events as they happen.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(ev Event) { f(ev) }
