// Package runner applies the full load → derive → backtest pipeline to
// a list of instruments and aggregates per-market rows. One failing
// instrument degrades the output by a missing row, never an abort.
package runner

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/backtest"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
)

// Instrument identifies one market to process.
type Instrument struct {
	Symbol string
	// Benchmark optionally names the series required by the hedge
	// signal; empty skips hedge for this instrument.
	Benchmark string
}

// Row is the aggregated outcome for one instrument.
type Row struct {
	Symbol      string
	Bars        int
	Skewness    map[alpha.Type]float64
	TotalReturn float64
	Sharpe      float64
	MaxDrawdown float64
	TradeCount  int
}

// Config carries the shared, read-only run parameters.
type Config struct {
	Start          time.Time
	End            time.Time
	Interval       marketdata.Interval
	Strategy       backtest.Strategy
	EntryThreshold float64
	// RateDifferential scales the hedge signal; zero keeps the default.
	RateDifferential float64
}

// Runner owns a provider and fans the pipeline out per instrument.
type Runner struct {
	log      zerolog.Logger
	provider marketdata.Provider
}

// New constructs a runner over the given market data provider.
func New(log zerolog.Logger, provider marketdata.Provider) *Runner {
	return &Runner{log: log, provider: provider}
}

// Run processes every instrument concurrently; each pipeline owns its
// data exclusively, so rows only meet on the results channel. Output is
// sorted by symbol for deterministic tables.
func (r *Runner) Run(ctx context.Context, instruments []Instrument, cfg Config) []Row {
	if cfg.Strategy == "" {
		cfg.Strategy = backtest.StrategyAsymmetry
	}

	type outcome struct {
		row Row
		ok  bool
	}
	results := make(chan outcome, len(instruments))

	for _, inst := range instruments {
		go func(inst Instrument) {
			row, err := r.runOne(ctx, inst, cfg)
			if err != nil {
				r.log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("instrument skipped")
				results <- outcome{}
				return
			}
			results <- outcome{row: row, ok: true}
		}(inst)
	}

	rows := make([]Row, 0, len(instruments))
	for range instruments {
		out := <-results
		if out.ok {
			rows = append(rows, out.row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows
}

func (r *Runner) runOne(ctx context.Context, inst Instrument, cfg Config) (Row, error) {
	bars, err := r.provider.History(ctx, inst.Symbol, cfg.Start, cfg.End, cfg.Interval)
	if err != nil {
		return Row{}, err
	}

	opts := []alpha.Option{}
	if cfg.RateDifferential != 0 {
		opts = append(opts, alpha.WithRateDifferential(cfg.RateDifferential))
	}
	skewTypes := []alpha.Type{alpha.Tail, alpha.Fast, alpha.Pricing, alpha.Coverage}
	if inst.Benchmark != "" {
		benchBars, err := r.provider.History(ctx, inst.Benchmark, cfg.Start, cfg.End, cfg.Interval)
		if err != nil {
			r.log.Warn().Err(err).
				Str("symbol", inst.Symbol).
				Str("benchmark", inst.Benchmark).
				Msg("benchmark unavailable, skipping hedge signal")
		} else {
			opts = append(opts, alpha.WithBenchmark(marketdata.Closes(benchBars)))
			skewTypes = append(skewTypes, alpha.Hedge)
		}
	}
	calc := alpha.NewCalculator(opts...)

	skew := make(map[alpha.Type]float64, len(skewTypes))
	for _, typ := range skewTypes {
		s, err := calc.Compute(typ, bars)
		if err != nil {
			return Row{}, err
		}
		skew[typ] = alpha.Summarize(typ, s).Skewness
	}

	var res backtest.Result
	if cfg.Strategy == backtest.StrategySkewGated {
		res, err = backtest.RunSkewGated(r.log, calc, bars, backtest.SkewGateConfig{
			SkewThreshold:  cfg.EntryThreshold,
			PeriodsPerYear: cfg.Interval.PeriodsPerYear(),
		})
	} else {
		res, err = backtest.RunStrategy(r.log, cfg.Strategy, calc, bars, backtest.Config{
			EntryThreshold: cfg.EntryThreshold,
			PeriodsPerYear: cfg.Interval.PeriodsPerYear(),
		})
	}
	// A sample too short to define the strategy's alpha is a degenerate
	// zero-activity result, not a missing market.
	if errors.Is(err, backtest.ErrEmptySeries) {
		r.log.Warn().
			Str("symbol", inst.Symbol).
			Str("strategy", string(cfg.Strategy)).
			Int("bars", len(bars)).
			Msg("alpha series empty, reporting zero-activity result")
		res = backtest.Result{Strategy: string(cfg.Strategy)}
	} else if err != nil {
		return Row{}, err
	}

	return Row{
		Symbol:      inst.Symbol,
		Bars:        len(bars),
		Skewness:    skew,
		TotalReturn: res.TotalReturn,
		Sharpe:      res.Sharpe,
		MaxDrawdown: res.MaxDrawdown,
		TradeCount:  res.TradeCount,
	}, nil
}
