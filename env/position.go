package env

// Position is the open exposure of the account. The zero value is flat.
//
// Fields are private so every position is built through Flat or
// NewPosition, which keep Side == None exactly when Volume == 0.
type Position struct {
	side   Side
	volume float64
	entry  float64
}

// Flat returns the empty position.
func Flat() Position {
	return Position{}
}

// NewPosition builds a position. A None side or a non-positive volume
// yields Flat().
func NewPosition(side Side, volume, entryPrice float64) Position {
	if side == None || volume <= 0 {
		return Flat()
	}
	return Position{side: side, volume: volume, entry: entryPrice}
}

func (p Position) Side() Side { return p.side }

func (p Position) Volume() float64 { return p.volume }

// EntryPrice is the volume weighted average price of the open volume,
// 0 when flat.
func (p Position) EntryPrice() float64 { return p.entry }

func (p Position) IsFlat() bool { return p.side == None }

// PortfolioValue marks pos to market at price.
//
//	none:  0
//	long:  price*volume
//	short: 2*entry*volume - price*volume
func PortfolioValue(pos Position, price float64) float64 {
	switch pos.side {
	case LongSide:
		return price * pos.volume
	case ShortSide:
		return 2*pos.entry*pos.volume - price*pos.volume
	}
	return 0
}
