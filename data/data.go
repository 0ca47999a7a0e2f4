package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/tradeenv/market"
)

const dateLayout = "2006-01-02"

// Request selects a bar range. Start and End are compared at day
// granularity when checking the cache.
type Request struct {
	Symbol   string
	Interval market.Interval
	Start    time.Time
	End      time.Time
}

// Provider downloads bars from a market data source.
type Provider interface {
	Klines(ctx context.Context, req Request) ([]market.Bar, error)
}

// Cache serves bars from CSV files in Dir, falling back to Provider
// when the cached file is missing or covers a different range.
type Cache struct {
	Dir      string
	Provider Provider
	Log      logrus.FieldLogger
	Save     bool
}

// Path is where the bars for symbol and interval are cached.
func (c *Cache) Path(symbol string, interval market.Interval) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%s_data.csv", symbol, interval))
}

// Get returns the requested bars.
func (c *Cache) Get(ctx context.Context, req Request) (*market.BarSet, error) {
	log := c.logger().WithFields(logrus.Fields{
		"symbol":   req.Symbol,
		"interval": req.Interval,
		"start":    req.Start.Format(dateLayout),
		"end":      req.End.Format(dateLayout),
	})
	path := c.Path(req.Symbol, req.Interval)

	bars, err := market.LoadCSV(path)
	switch {
	case err == nil && covers(bars, req):
		log.WithField("path", path).Info("using cached bars")
		return market.NewBarSet(req.Symbol, req.Interval, bars), nil
	case err == nil:
		log.WithField("path", path).Info("cached bars cover a different range")
	case errors.Is(err, os.ErrNotExist):
	default:
		log.WithError(err).Warn("ignoring unreadable cache file")
	}

	if c.Provider == nil {
		return nil, fmt.Errorf("no cached bars at %s and no provider configured", path)
	}

	log.Info("downloading bars")
	bars, err = c.Provider.Klines(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("download %s %s: %w", req.Symbol, req.Interval, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("download %s %s: no bars returned", req.Symbol, req.Interval)
	}

	if c.Save {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return nil, err
		}
		if err := market.SaveCSV(path, bars); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		log.WithFields(logrus.Fields{"path": path, "bars": len(bars)}).Info("saved bars")
	}

	return market.NewBarSet(req.Symbol, req.Interval, bars), nil
}

func (c *Cache) logger() logrus.FieldLogger {
	if c.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		return l
	}
	return c.Log
}

// covers reports whether the first and last bars fall on the request's
// start and end days.
func covers(bars []market.Bar, req Request) bool {
	if len(bars) == 0 {
		return false
	}
	first := bars[0].Time.UTC().Format(dateLayout)
	last := bars[len(bars)-1].Time.UTC().Format(dateLayout)
	return first == req.Start.UTC().Format(dateLayout) && last == req.End.UTC().Format(dateLayout)
}
