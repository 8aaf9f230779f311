package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/backtest"
	"github.com/studiofarzulla/alpha-asymmetry/internal/metrics"
	"github.com/studiofarzulla/alpha-asymmetry/internal/report"
	"github.com/studiofarzulla/alpha-asymmetry/internal/runner"
)

var marketsStrategy string

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Run the cross-market pipeline over every configured instrument",
	RunE:  runMarkets,
}

func init() {
	marketsCmd.Flags().StringVar(&marketsStrategy, "strategy", string(backtest.StrategyAsymmetry),
		"strategy to backtest per market (asymmetry, momentum, mean_reversion, skew_asymmetry)")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}

	srv := metrics.Serve(env.log, env.cfg.App.MetricsAddr)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instruments := make([]runner.Instrument, 0, len(env.cfg.Instruments))
	for _, inst := range env.cfg.Instruments {
		instruments = append(instruments, runner.Instrument{Symbol: inst.Symbol, Benchmark: inst.Benchmark})
	}
	if len(instruments) == 0 {
		return fmt.Errorf("no instruments configured")
	}

	env.log.Info().Int("instruments", len(instruments)).Str("strategy", marketsStrategy).Msg("starting cross-market run")

	rows := runner.New(env.log, env.provider).Run(ctx, instruments, runner.Config{
		Start:            env.start,
		End:              env.end,
		Interval:         env.interval,
		Strategy:         backtest.Strategy(marketsStrategy),
		EntryThreshold:   env.cfg.Backtest.EntryThreshold,
		RateDifferential: env.cfg.Backtest.RateDifferential,
	})

	table := report.NewTable(fmt.Sprintf("Cross-market: %s", marketsStrategy),
		"symbol", "bars", "skew(tail)", "skew(fast)", "skew(pricing)", "skew(coverage)", "skew(hedge)",
		"return", "sharpe", "max drawdown", "trades")
	for _, row := range rows {
		table.AddRow(
			row.Symbol,
			strconv.Itoa(row.Bars),
			skewCell(row, alpha.Tail),
			skewCell(row, alpha.Fast),
			skewCell(row, alpha.Pricing),
			skewCell(row, alpha.Coverage),
			skewCell(row, alpha.Hedge),
			report.Percent(row.TotalReturn),
			report.Float(row.Sharpe),
			report.Percent(row.MaxDrawdown),
			strconv.Itoa(row.TradeCount),
		)
	}
	if len(rows) < len(instruments) {
		env.log.Warn().
			Int("requested", len(instruments)).
			Int("returned", len(rows)).
			Msg("some instruments were skipped")
	}
	return emit(table)
}

func skewCell(row runner.Row, typ alpha.Type) string {
	v, ok := row.Skewness[typ]
	if !ok {
		return "n/a"
	}
	return report.Float(v)
}
