// Package backtest simulates single-asset long/flat/short strategies
// driven by an alpha series thresholded into position decisions.
package backtest

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// ErrEmptySeries signals an alpha series with zero defined points.
// Recoverable: callers report a degenerate zero-activity result instead.
var ErrEmptySeries = errors.New("backtest: alpha series has no defined points")

// State is the explicit position state of the engine. Keeping it tagged
// (rather than sign flags) keeps trade bookkeeping auditable separately
// from return accumulation.
type State int

const (
	Flat State = iota
	Long
	Short
)

func (s State) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Trade records one round trip. Exit strictly follows entry; the return
// is the compounded signed per-bar return over the holding period.
type Trade struct {
	EntryTs    time.Time
	ExitTs     time.Time
	EntryPrice float64
	ExitPrice  float64
	Side       State
	Return     float64
}

// Result is the immutable outcome of one strategy run on one market.
type Result struct {
	Strategy    string
	TotalReturn float64
	Sharpe      float64
	MaxDrawdown float64
	WinRate     float64
	TradeCount  int
	BarsHeld    int
	Trades      []Trade
}

// Config tunes a single engine run.
type Config struct {
	// EntryThreshold gates position entry: alpha above it targets Long,
	// below its negation targets Short.
	EntryThreshold float64
	// PeriodsPerYear annualizes the Sharpe ratio (52 weekly, 252 daily).
	PeriodsPerYear float64
	// Invert flips the signal sign before thresholding (the
	// mean-reversion rule enters short where the momentum rule enters long).
	Invert bool
}

func (c Config) withDefaults() Config {
	if c.EntryThreshold <= 0 {
		c.EntryThreshold = 0.75
	}
	if c.PeriodsPerYear <= 0 {
		c.PeriodsPerYear = marketdata.IntervalWeekly.PeriodsPerYear()
	}
	return c
}

// Engine runs the Flat/Long/Short state machine over a bar sequence.
// One instance per market; runs are idempotent.
type Engine struct {
	log zerolog.Logger
	cfg Config
}

// NewEngine constructs an engine with defaults applied.
func NewEngine(log zerolog.Logger, cfg Config) *Engine {
	return &Engine{log: log, cfg: cfg.withDefaults()}
}

// Run executes one strategy pass. Position decisions are taken at each
// bar's close (execution-at-close, no intrabar fills) and the position
// accrues the next bars' simple close-to-close returns, signed by side
// and compounded. Bars where the alpha is undefined target Flat.
func (e *Engine) Run(name string, alphaSeries series.Series, bars []marketdata.Bar) (Result, error) {
	if alphaSeries.Len() == 0 {
		return Result{}, ErrEmptySeries
	}

	res := Result{Strategy: name, Trades: []Trade{}}
	if len(bars) < 2 {
		return res, nil
	}

	state := Flat
	entryIdx := -1
	equity, peak := 1.0, 1.0
	tradeEquity := 1.0
	perBar := make([]float64, 0, len(bars)-1)

	closeTrade := func(exitIdx int) {
		trade := Trade{
			EntryTs:    bars[entryIdx].Ts,
			ExitTs:     bars[exitIdx].Ts,
			EntryPrice: bars[entryIdx].Close,
			ExitPrice:  bars[exitIdx].Close,
			Side:       state,
			Return:     tradeEquity - 1,
		}
		res.Trades = append(res.Trades, trade)
		e.log.Debug().
			Str("strategy", name).
			Str("side", state.String()).
			Time("entry", trade.EntryTs).
			Time("exit", trade.ExitTs).
			Float64("return", trade.Return).
			Msg("closed trade")
	}

	for i := range bars {
		if i > 0 {
			r := 0.0
			if bars[i-1].Close != 0 {
				r = bars[i].Close/bars[i-1].Close - 1
			}
			signed := 0.0
			switch state {
			case Long:
				signed = r
			case Short:
				signed = -r
			}
			perBar = append(perBar, signed)
			if state != Flat {
				res.BarsHeld++
				tradeEquity *= 1 + signed
			}
			equity *= 1 + signed
			if equity > peak {
				peak = equity
			}
			if dd := equity/peak - 1; dd < res.MaxDrawdown {
				res.MaxDrawdown = dd
			}
		}

		target := Flat
		if v, ok := alphaSeries.Value(bars[i].Ts); ok {
			if e.cfg.Invert {
				v = -v
			}
			switch {
			case v > e.cfg.EntryThreshold:
				target = Long
			case v < -e.cfg.EntryThreshold:
				target = Short
			}
		}
		// A position opened on the final close would have nothing to
		// hold over, so the last bar only closes.
		if i == len(bars)-1 {
			target = Flat
		}
		if target == state {
			continue
		}
		if state != Flat {
			closeTrade(i)
		}
		state = target
		if state != Flat {
			entryIdx = i
			tradeEquity = 1.0
		}
	}

	res.TotalReturn = equity - 1
	res.Sharpe = sharpe(perBar, e.cfg.PeriodsPerYear)
	res.TradeCount = len(res.Trades)
	if res.TradeCount > 0 {
		wins := 0
		for _, tr := range res.Trades {
			if tr.Return > 0 {
				wins++
			}
		}
		res.WinRate = float64(wins) / float64(res.TradeCount)
	}
	return res, nil
}

// sharpe annualizes mean/std of per-bar returns; 0 when the deviation
// is zero (the degenerate all-flat case).
func sharpe(returns []float64, periodsPerYear float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	var total float64
	for _, r := range returns {
		total += r
	}
	mean := total / float64(n)
	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}
