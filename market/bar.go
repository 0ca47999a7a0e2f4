package market

import (
	"fmt"
	"time"
)

// Bar is a single OHLCV candle. Bars are values and are never mutated
// once they are part of a sequence.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bars is a time ordered, fixed length, random access sequence of bars.
type Bars interface {
	Len() int
	Bar(i int) Bar
}

// BarSet is an in-memory Bars backed by a slice.
type BarSet struct {
	Symbol   string
	Interval Interval
	bars     []Bar
}

// NewBarSet copies bars into a new set. The caller keeps ownership of the
// passed slice.
func NewBarSet(symbol string, interval Interval, bars []Bar) *BarSet {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &BarSet{
		Symbol:   symbol,
		Interval: interval,
		bars:     cp,
	}
}

func (bs *BarSet) Len() int { return len(bs.bars) }

func (bs *BarSet) Bar(i int) Bar { return bs.bars[i] }

// First returns the earliest bar; ok is false for an empty set.
func (bs *BarSet) First() (b Bar, ok bool) {
	if len(bs.bars) == 0 {
		return Bar{}, false
	}
	return bs.bars[0], true
}

// Last returns the latest bar; ok is false for an empty set.
func (bs *BarSet) Last() (b Bar, ok bool) {
	if len(bs.bars) == 0 {
		return Bar{}, false
	}
	return bs.bars[len(bs.bars)-1], true
}

// Interval is a kline interval as used by Binance ("1m", "1h", "1d", ...).
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

var intervals = map[Interval]struct{}{
	Interval1m: {}, Interval3m: {}, Interval5m: {}, Interval15m: {}, Interval30m: {},
	Interval1h: {}, Interval2h: {}, Interval4h: {}, Interval6h: {}, Interval8h: {},
	Interval12h: {}, Interval1d: {}, Interval3d: {}, Interval1w: {}, Interval1M: {},
}

func (iv Interval) Valid() bool {
	_, ok := intervals[iv]
	return ok
}

// ParseInterval validates s as a kline interval.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if !iv.Valid() {
		return "", fmt.Errorf("unknown interval %q", s)
	}
	return iv, nil
}
