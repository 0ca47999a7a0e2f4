package env

import "math"

// openNewPosition opens a position on the side of a from flat.
func (e *Env) openNewPosition(a Action, volume, price float64) Action {
	vol, cost := e.costVolume(volume, price)
	if vol <= 0 {
		return Hold
	}

	e.balance -= cost
	e.pos = NewPosition(sideOf(a), vol, price)
	e.emit(Event{Kind: EventOpen, Side: e.pos.Side(), Volume: vol, Price: price, Amount: -cost})
	e.payTransactionFee()
	return a
}

// buyMore adds volume to the position on its own side and moves the entry
// price to the volume weighted average.
func (e *Env) buyMore(a Action, volume, price float64) Action {
	vol, cost := e.costVolume(volume, price)
	if vol <= 0 {
		return Hold
	}

	owned := e.pos.Volume()
	total := owned + vol
	entry := (e.pos.EntryPrice()*owned + price*vol) / total

	e.balance -= cost
	e.pos = NewPosition(e.pos.Side(), total, entry)
	e.emit(Event{Kind: EventAdd, Side: e.pos.Side(), Volume: vol, Price: price, Amount: -cost})
	e.payTransactionFee()
	return a
}

// sell reduces or closes the position against the side of a. Volume past
// what is owned opens a new position on the side of a at the same price.
// The fee is charged once here; a reversal pays its own opening fee.
func (e *Env) sell(a Action, volume, price float64) Action {
	side := e.pos.Side()
	owned := e.pos.Volume()
	entry := e.pos.EntryPrice()

	if volume < owned {
		proceeds := entry*volume + profitPerShare(side, entry, price)*volume
		e.balance += proceeds
		e.pos = NewPosition(side, owned-volume, entry)
		e.emit(Event{Kind: EventReduce, Side: side, Volume: volume, Price: price, Amount: proceeds})
		e.payTransactionFee()
		return a
	}

	proceeds := PortfolioValue(e.pos, price)
	e.balance += proceeds
	e.pos = Flat()
	e.emit(Event{Kind: EventClose, Side: side, Volume: owned, Price: price, Amount: proceeds})
	e.payTransactionFee()

	if rest := volume - owned; rest > 0 {
		e.openNewPosition(a, rest, price)
	}
	return a
}

func (e *Env) hold() Action {
	return Hold
}

// payTransactionFee charges the flat fee. The balance may go negative,
// which the next stop loss check picks up.
func (e *Env) payTransactionFee() {
	e.balance -= e.fee
	e.emit(Event{Kind: EventFee, Side: e.pos.Side(), Amount: -e.fee})
}

// costVolume clamps volume to what the balance can pay for after
// reserving the fee. A clamped volume is a whole number of units.
func (e *Env) costVolume(volume, price float64) (vol, cost float64) {
	if e.balance >= volume*price+e.fee {
		return volume, volume * price
	}
	if price <= 0 {
		return 0, 0
	}
	vol = math.Floor((e.balance - e.fee) / price)
	if vol < 0 {
		vol = 0
	}
	return vol, vol * price
}

// stopLossHit reports whether capital is exhausted.
func (e *Env) stopLossHit() bool {
	return e.portfolio+e.balance <= 0 || e.balance <= 0
}

// liquidate fully sells the open position against its side. A flat
// account has nothing to sell.
func (e *Env) liquidate(price float64) Action {
	e.emit(Event{Kind: EventStopLoss, Side: e.pos.Side(), Volume: e.pos.Volume(), Price: price})
	if e.pos.IsFlat() {
		return Hold
	}
	return e.sell(e.pos.Side().Exit(), e.pos.Volume(), price)
}

func profitPerShare(side Side, entry, price float64) float64 {
	switch side {
	case LongSide:
		return price - entry
	case ShortSide:
		return entry - price
	}
	return 0
}
