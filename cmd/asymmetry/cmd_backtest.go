package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/backtest"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/report"
)

var (
	backtestSymbol string
	backtestSweep  bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy comparison on one instrument",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "instrument to backtest (default: first configured)")
	backtestCmd.Flags().BoolVar(&backtestSweep, "sweep", false, "rerun each strategy across the configured entry thresholds")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}

	inst := env.instrument(backtestSymbol)
	ctx := context.Background()
	bars, err := env.provider.History(ctx, inst.Symbol, env.start, env.end, env.interval)
	if err != nil {
		return fmt.Errorf("load %s: %w", inst.Symbol, err)
	}

	opts := []alpha.Option{}
	if env.cfg.Backtest.RateDifferential != 0 {
		opts = append(opts, alpha.WithRateDifferential(env.cfg.Backtest.RateDifferential))
	}
	if inst.Benchmark != "" {
		benchBars, err := env.provider.History(ctx, inst.Benchmark, env.start, env.end, env.interval)
		if err != nil {
			env.log.Warn().Err(err).Str("benchmark", inst.Benchmark).Msg("benchmark unavailable")
		} else {
			opts = append(opts, alpha.WithBenchmark(marketdata.Closes(benchBars)))
		}
	}
	calc := alpha.NewCalculator(opts...)

	engineCfg := backtest.Config{
		EntryThreshold: env.cfg.Backtest.EntryThreshold,
		PeriodsPerYear: env.interval.PeriodsPerYear(),
	}

	var results []backtest.Result
	for _, strat := range backtest.Strategies() {
		if backtestSweep {
			sweep, err := backtest.ThresholdSweep(env.log, strat, calc, bars, engineCfg, env.cfg.Backtest.Thresholds)
			if err != nil {
				return fmt.Errorf("%s: %w", strat, err)
			}
			results = append(results, sweep...)
			continue
		}
		res, err := backtest.RunStrategy(env.log, strat, calc, bars, engineCfg)
		if err != nil {
			return fmt.Errorf("%s: %w", strat, err)
		}
		results = append(results, res)
	}

	gateCfg := backtest.SkewGateConfig{
		SkewThreshold:  env.cfg.Backtest.EntryThreshold,
		PeriodsPerYear: env.interval.PeriodsPerYear(),
	}
	if backtestSweep {
		sweep, err := backtest.SkewGateSweep(env.log, calc, bars, gateCfg, env.cfg.Backtest.Thresholds)
		if err != nil {
			return fmt.Errorf("%s: %w", backtest.StrategySkewGated, err)
		}
		results = append(results, sweep...)
	} else {
		res, err := backtest.RunSkewGated(env.log, calc, bars, gateCfg)
		if err != nil {
			return fmt.Errorf("%s: %w", backtest.StrategySkewGated, err)
		}
		results = append(results, res)
	}

	table := report.NewTable(fmt.Sprintf("Backtest: %s (%d bars)", inst.Symbol, len(bars)),
		"strategy", "return", "sharpe", "max drawdown", "win rate", "trades")
	for _, res := range results {
		table.AddRow(
			res.Strategy,
			report.Percent(res.TotalReturn),
			report.Float(res.Sharpe),
			report.Percent(res.MaxDrawdown),
			report.Percent(res.WinRate),
			strconv.Itoa(res.TradeCount),
		)
	}
	return emit(table)
}
