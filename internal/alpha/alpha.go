// Package alpha derives model signals from price series using fixed
// rolling-window transforms. All windows end at the bar being scored;
// leading entries with insufficient history are absent from the output,
// never zero-filled.
package alpha

import (
	"errors"
	"fmt"
	"math"

	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// Type names a signal definition.
type Type string

const (
	// The five signals of the working paper.
	Tail     Type = "tail"
	Fast     Type = "fast"
	Pricing  Type = "pricing"
	Coverage Type = "coverage"
	Hedge    Type = "hedge"

	// The reduced set published alongside the verification dataset.
	// MeanReversion shares the pricing transform, TrendFollowing the
	// fast transform, and Hybrid combines the two.
	MeanReversion  Type = "alpha_mr"
	TrendFollowing Type = "alpha_tf"
	Hybrid         Type = "alpha_hat"
)

// Types lists the paper's five signal definitions.
func Types() []Type { return []Type{Tail, Fast, Pricing, Coverage, Hedge} }

// VerificationTypes lists the reduced set used for dataset verification.
func VerificationTypes() []Type { return []Type{MeanReversion, TrendFollowing, Hybrid} }

// ErrUnknownType reports a signal name outside the fixed enumeration.
var ErrUnknownType = errors.New("alpha: unknown signal type")

// Window lengths fixed by the signal definitions.
const (
	fastReturnBars  = 5
	volWindow       = 20
	pricingWindow   = 60
	tailWindow      = 252
	tailMinPeriods  = 60
	tailQuantile    = 0.95
	hedgeCorrWindow = 100

	// SkewWindow and SkewMinPeriods parameterize the rolling skewness
	// used by the asymmetry strategy entry rule.
	SkewWindow     = 20
	SkewMinPeriods = 10
)

// DefaultRateDifferential approximates the JPY-USD carry spread used to
// scale the hedge signal.
const DefaultRateDifferential = -0.02

// Calculator derives alpha series from a bar sequence. One instance per
// instrument; it owns no shared state.
type Calculator struct {
	rateDiff  float64
	benchmark series.Series // benchmark close prices, hedge only
}

// Option configures Calculator construction parameters.
type Option func(*Calculator)

// WithBenchmark supplies the benchmark close series required by the
// hedge signal (the paper uses the dollar index).
func WithBenchmark(closes series.Series) Option {
	return func(c *Calculator) { c.benchmark = closes }
}

// WithRateDifferential overrides the carry spread scaling the hedge signal.
func WithRateDifferential(diff float64) Option {
	return func(c *Calculator) { c.rateDiff = diff }
}

// NewCalculator builds a calculator with the paper's defaults.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{rateDiff: DefaultRateDifferential}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute derives the named signal over the bar sequence.
func (c *Calculator) Compute(t Type, bars []marketdata.Bar) (series.Series, error) {
	closes := marketdata.Closes(bars)
	switch t {
	case Tail:
		return tailAlpha(closes), nil
	case Fast, TrendFollowing:
		return fastAlpha(closes), nil
	case Pricing, MeanReversion:
		return pricingAlpha(closes), nil
	case Coverage:
		return coverageAlpha(closes), nil
	case Hedge:
		if c.benchmark.Len() == 0 {
			return series.Series{}, fmt.Errorf("alpha: hedge signal requires a benchmark series")
		}
		return hedgeAlpha(closes, c.benchmark, c.rateDiff), nil
	case Hybrid:
		return hybridAlpha(closes), nil
	default:
		return series.Series{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// ComputeAll derives every requested signal, keyed by type.
func (c *Calculator) ComputeAll(types []Type, bars []marketdata.Bar) (map[Type]series.Series, error) {
	out := make(map[Type]series.Series, len(types))
	for _, t := range types {
		s, err := c.Compute(t, bars)
		if err != nil {
			return nil, err
		}
		out[t] = s
	}
	return out, nil
}

// tailAlpha keeps the signed return where its magnitude exceeds the
// trailing 95th percentile of absolute returns, zero otherwise.
func tailAlpha(closes series.Series) series.Series {
	rets := closes.PctChange(1)
	abs := series.Combine(rets, rets, func(x, _ float64) float64 { return math.Abs(x) })
	q95 := abs.RollingQuantile(tailWindow, tailMinPeriods, tailQuantile)
	return series.Combine(rets, q95, func(r, q float64) float64 {
		if math.Abs(r) > q {
			return r
		}
		return 0
	})
}

// fastAlpha is the trend signal: rate of change over five bars scaled
// by trailing return volatility.
func fastAlpha(closes series.Series) series.Series {
	roc := closes.PctChange(fastReturnBars)
	vol := closes.PctChange(1).RollingStd(volWindow, volWindow)
	return series.Combine(roc, vol, func(r, v float64) float64 {
		if v == 0 {
			return math.NaN() // dropped by Combine/New
		}
		return r / (v * math.Sqrt(fastReturnBars))
	})
}

// pricingAlpha is the mean-reversion signal: deviation from the
// trailing mean normalized by trailing volatility of the price level.
func pricingAlpha(closes series.Series) series.Series {
	ma := closes.RollingMean(pricingWindow)
	sd := closes.RollingStd(pricingWindow, pricingWindow)
	dev := series.Combine(closes, ma, func(c, m float64) float64 { return c - m })
	return series.Combine(dev, sd, func(d, s float64) float64 {
		if s == 0 {
			return math.NaN()
		}
		return d / s
	})
}

// coverageAlpha measures the short-horizon change in realized volatility.
func coverageAlpha(closes series.Series) series.Series {
	vol := closes.PctChange(1).RollingStd(volWindow, volWindow)
	lagged := vol.Lag(fastReturnBars)
	return series.Combine(vol, lagged, func(v, l float64) float64 {
		if l == 0 {
			return math.NaN()
		}
		return v/l - 1
	})
}

// hedgeAlpha scales the trailing return correlation with the benchmark
// by the configured rate differential.
func hedgeAlpha(closes, benchmark series.Series, rateDiff float64) series.Series {
	rets := closes.PctChange(1)
	benchRets := benchmark.PctChange(1)
	corr := series.RollingCorr(rets, benchRets, hedgeCorrWindow)
	return series.Combine(corr, corr, func(c, _ float64) float64 { return c * rateDiff })
}

// hybridAlpha is the equal-weight combination of the trend and
// mean-reversion signals, defined where both are.
func hybridAlpha(closes series.Series) series.Series {
	return series.Combine(fastAlpha(closes), pricingAlpha(closes), func(f, p float64) float64 {
		return (f + p) / 2
	})
}
