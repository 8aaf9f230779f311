// Package marketdata hosts providers that load historical OHLC price
// series for an instrument over a date range.
package marketdata

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// ErrDataUnavailable signals the provider returned no rows for the
// requested instrument and range. Recoverable: the cross-market runner
// omits the instrument instead of aborting.
var ErrDataUnavailable = errors.New("marketdata: no rows for requested range")

// Interval is the sampling granularity of a price series.
type Interval string

const (
	IntervalDaily  Interval = "1d"
	IntervalWeekly Interval = "1wk"
)

// PeriodsPerYear returns the Sharpe annualization base for the interval.
func (i Interval) PeriodsPerYear() float64 {
	if i == IntervalWeekly {
		return 52
	}
	return 252
}

// Duration returns the nominal spacing between consecutive bars.
func (i Interval) Duration() time.Duration {
	if i == IntervalWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Bar is a single OHLC observation. Sequences are ordered by strictly
// increasing timestamp with no duplicates.
type Bar struct {
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Provider loads an ordered bar sequence for an instrument.
type Provider interface {
	History(ctx context.Context, symbol string, start, end time.Time, interval Interval) ([]Bar, error)
}

// Closes projects the close prices of a bar sequence into a series.
func Closes(bars []Bar) series.Series {
	points := make([]series.Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, series.Point{Ts: b.Ts, Value: b.Close})
	}
	return series.New(points)
}

// Returns projects simple close-to-close returns of a bar sequence.
func Returns(bars []Bar) series.Series {
	return Closes(bars).PctChange(1)
}

func sortBars(bars []Bar) []Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Ts.Before(bars[j].Ts) })
	deduped := bars[:0]
	for _, b := range bars {
		if len(deduped) > 0 && !deduped[len(deduped)-1].Ts.Before(b.Ts) {
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}

// logGaps warns about gaps wider than one missed sampling period.
// Holidays are expected, so gaps never fail the load.
func logGaps(log zerolog.Logger, symbol string, bars []Bar, interval Interval) {
	limit := 2 * interval.Duration()
	for i := 1; i < len(bars); i++ {
		gap := bars[i].Ts.Sub(bars[i-1].Ts)
		if gap > limit {
			log.Warn().
				Str("symbol", symbol).
				Time("from", bars[i-1].Ts).
				Time("to", bars[i].Ts).
				Dur("gap", gap).
				Msg("price series gap exceeds sampling interval")
		}
	}
}
