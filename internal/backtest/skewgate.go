package backtest

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/metrics"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// StrategySkewGated is the full asymmetry strategy: entries are gated
// on the trailing skewness of a signal rather than its level.
const StrategySkewGated Strategy = "skew_asymmetry"

// Position size bounds for the asymmetry-index sizing rule.
const (
	minPositionSize = 0.5
	maxPositionSize = 2.0
)

// SkewGateConfig tunes one skew-gated strategy run.
type SkewGateConfig struct {
	// SkewThreshold gates entries on trailing signal skewness.
	SkewThreshold float64
	// MaxHoldBars forces an exit after this many bars in position.
	MaxHoldBars int
	// PeriodsPerYear annualizes the Sharpe ratio.
	PeriodsPerYear float64
}

func (c SkewGateConfig) withDefaults() SkewGateConfig {
	if c.SkewThreshold <= 0 {
		c.SkewThreshold = 0.75
	}
	if c.MaxHoldBars <= 0 {
		c.MaxHoldBars = 4
	}
	if c.PeriodsPerYear <= 0 {
		c.PeriodsPerYear = marketdata.IntervalWeekly.PeriodsPerYear()
	}
	return c
}

// gateInputs bundles the derived series the entry rules read.
type gateInputs struct {
	fast      series.Series
	pricing   series.Series
	fastSkew  series.Series
	priceSkew series.Series
	priceStd  series.Series
	ai        series.Series
}

// RunSkewGated executes the full asymmetry strategy over weekly bars:
//   - enter long when the trailing skewness of the fast alpha exceeds
//     the threshold and the fast alpha itself is positive;
//   - enter short when the pricing alpha's trailing skewness exceeds it
//     and the pricing alpha sits above half its trailing deviation;
//   - conflicting signals stay flat, positions close on signal loss or
//     after MaxHoldBars, and signals execute one bar after they form;
//   - position size scales with the trailing asymmetry index, clamped
//     to [0.5, 2.0].
func RunSkewGated(log zerolog.Logger, calc *alpha.Calculator, bars []marketdata.Bar, cfg SkewGateConfig) (Result, error) {
	fast, err := calc.Compute(alpha.Fast, bars)
	if err != nil {
		return Result{}, fmt.Errorf("compute fast alpha: %w", err)
	}
	pricing, err := calc.Compute(alpha.Pricing, bars)
	if err != nil {
		return Result{}, fmt.Errorf("compute pricing alpha: %w", err)
	}
	if fast.Len() == 0 || pricing.Len() == 0 {
		return Result{}, ErrEmptySeries
	}

	in := gateInputs{
		fast:      fast,
		pricing:   pricing,
		fastSkew:  alpha.RollingSkewness(fast),
		priceSkew: alpha.RollingSkewness(pricing),
		priceStd:  pricing.RollingStd(alpha.SkewWindow, alpha.SkewMinPeriods),
		ai:        alpha.RollingAsymmetryIndex(fast, alpha.SkewWindow, alpha.SkewMinPeriods),
	}
	res, err := runSkewGated(log, in, bars, cfg)
	if err != nil {
		return Result{}, err
	}
	metrics.BacktestsTotal.WithLabelValues(string(StrategySkewGated)).Inc()
	return res, nil
}

func runSkewGated(log zerolog.Logger, in gateInputs, bars []marketdata.Bar, cfg SkewGateConfig) (Result, error) {
	cfg = cfg.withDefaults()

	res := Result{Strategy: string(StrategySkewGated), Trades: []Trade{}}
	if len(bars) < 2 {
		return res, nil
	}

	state := Flat
	size := 0.0
	hold := 0
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
		log.Debug().
			Str("strategy", res.Strategy).
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
				signed = r * size
			case Short:
				signed = -r * size
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
		targetSize := 0.0
		switch {
		case state != Flat && hold >= cfg.MaxHoldBars:
			// forced exit, no re-entry on the same bar
		case i == 0 || i == len(bars)-1:
			// no lagged signal yet, or the closing bar
		default:
			// one-bar execution lag: the signal formed at the prior
			// bar's close drives this bar's position.
			long, short, sz := skewGateSignals(in, bars[i-1], cfg.SkewThreshold)
			switch {
			case long && !short:
				target, targetSize = Long, sz
			case short && !long:
				target, targetSize = Short, sz
			}
		}

		if target == state {
			if state != Flat {
				size = targetSize // re-size with the fresh asymmetry index
				hold++
			}
			continue
		}
		if state != Flat {
			closeTrade(i)
		}
		state = target
		if state != Flat {
			entryIdx = i
			tradeEquity = 1.0
			size = targetSize
			hold = 1
		} else {
			size = 0
			hold = 0
		}
	}

	res.TotalReturn = equity - 1
	res.Sharpe = sharpe(perBar, cfg.PeriodsPerYear)
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

// skewGateSignals evaluates both entry rules at one bar. A rule that
// needs an undefined series value (warmup) never fires.
func skewGateSignals(in gateInputs, bar marketdata.Bar, threshold float64) (long, short bool, size float64) {
	aiVal, aiOK := in.ai.Value(bar.Ts)
	if !aiOK {
		return false, false, 0
	}

	if fsk, ok := in.fastSkew.Value(bar.Ts); ok && fsk > threshold {
		if f, ok := in.fast.Value(bar.Ts); ok && f > 0 {
			long = true
		}
	}
	if psk, ok := in.priceSkew.Value(bar.Ts); ok && psk > threshold {
		p, pOK := in.pricing.Value(bar.Ts)
		sd, sdOK := in.priceStd.Value(bar.Ts)
		if pOK && sdOK && p > 0.5*sd {
			short = true
		}
	}

	size = 1 + math.Abs(aiVal-1)
	if size < minPositionSize {
		size = minPositionSize
	}
	if size > maxPositionSize {
		size = maxPositionSize
	}
	return long, short, size
}

// SkewGateSweep reruns the skew-gated strategy across skew thresholds,
// one result per threshold in input order (the sensitivity table).
func SkewGateSweep(log zerolog.Logger, calc *alpha.Calculator, bars []marketdata.Bar, cfg SkewGateConfig, thresholds []float64) ([]Result, error) {
	out := make([]Result, 0, len(thresholds))
	for _, th := range thresholds {
		runCfg := cfg
		runCfg.SkewThreshold = th
		res, err := RunSkewGated(log, calc, bars, runCfg)
		if err != nil {
			return nil, fmt.Errorf("threshold %.2f: %w", th, err)
		}
		res.Strategy = fmt.Sprintf("%s@%.2f", StrategySkewGated, th)
		out = append(out, res)
	}
	return out, nil
}
