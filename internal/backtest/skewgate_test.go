package backtest

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// longOnlyGate fires the long rule wherever fastSkew and fast are
// defined; the short rule never fires.
func longOnlyGate(bars []marketdata.Bar, fastSkew []float64, ai []float64) gateInputs {
	n := len(bars)
	return gateInputs{
		fast:      alphaFor(bars, repeat(1, n)...),
		pricing:   alphaFor(bars, repeat(0, n)...),
		fastSkew:  alphaFor(bars, fastSkew...),
		priceSkew: alphaFor(bars, repeat(0, n)...),
		priceStd:  alphaFor(bars, repeat(1, n)...),
		ai:        alphaFor(bars, ai...),
	}
}

func skewCfg() SkewGateConfig {
	return SkewGateConfig{SkewThreshold: 0.75, MaxHoldBars: 4, PeriodsPerYear: 52}
}

func TestSkewGatedExecutionLag(t *testing.T) {
	bars := weeklyBars(100, 100, 110, 110, 110)
	// Signal forms at bar 0 only: the position must open at bar 1 and
	// earn bar 2's return, never bar 1's.
	in := longOnlyGate(bars, []float64{1}, []float64{1})

	res, err := runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if res.TradeCount != 1 {
		t.Fatalf("expected 1 trade, got %d", res.TradeCount)
	}
	trade := res.Trades[0]
	if !trade.EntryTs.Equal(bars[1].Ts) {
		t.Fatalf("entry should lag the signal by one bar: got %s want %s", trade.EntryTs, bars[1].Ts)
	}
	if !trade.ExitTs.Equal(bars[2].Ts) {
		t.Fatalf("position should close when the lagged signal is gone, exit %s", trade.ExitTs)
	}
	if math.Abs(res.TotalReturn-0.10) > 1e-12 {
		t.Fatalf("expected total return 0.10, got %v", res.TotalReturn)
	}
	if res.BarsHeld != 1 {
		t.Fatalf("expected 1 bar held, got %d", res.BarsHeld)
	}
}

func TestSkewGatedMaxHoldForcesExit(t *testing.T) {
	closes := make([]float64, 16)
	px := 100.0
	for i := range closes {
		closes[i] = px
		px *= 1.01
	}
	bars := weeklyBars(closes...)
	// Signal on every bar: only the holding limit can close a position.
	in := longOnlyGate(bars, repeat(1, 16), repeat(1, 16))

	res, err := runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if res.TradeCount != 3 {
		t.Fatalf("expected 3 max-hold round trips, got %d", res.TradeCount)
	}
	for _, tr := range res.Trades {
		if held := tr.ExitTs.Sub(tr.EntryTs); held != 4*7*24*time.Hour {
			t.Fatalf("trade held %s, want exactly 4 weeks", held)
		}
	}
	if res.BarsHeld != 12 {
		t.Fatalf("expected 12 bars held, got %d", res.BarsHeld)
	}
}

func TestSkewGatedSizingFollowsAsymmetryIndex(t *testing.T) {
	bars := weeklyBars(100, 100, 110, 110, 110)

	// AI 1.2 scales the single +10% bar to +12%.
	in := longOnlyGate(bars, []float64{1}, []float64{1.2})
	res, err := runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if math.Abs(res.TotalReturn-0.12) > 1e-12 {
		t.Fatalf("expected sized return 0.12, got %v", res.TotalReturn)
	}

	// An extreme AI clamps at double size.
	in = longOnlyGate(bars, []float64{1}, []float64{9})
	res, err = runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if math.Abs(res.TotalReturn-0.20) > 1e-12 {
		t.Fatalf("expected clamped return 0.20, got %v", res.TotalReturn)
	}
}

func TestSkewGatedConflictingSignalsStayFlat(t *testing.T) {
	closes := make([]float64, 10)
	px := 100.0
	for i := range closes {
		closes[i] = px
		px *= 1.02
	}
	bars := weeklyBars(closes...)
	n := len(bars)
	in := gateInputs{
		fast:      alphaFor(bars, repeat(1, n)...),
		pricing:   alphaFor(bars, repeat(1, n)...),
		fastSkew:  alphaFor(bars, repeat(1, n)...),
		priceSkew: alphaFor(bars, repeat(1, n)...),
		priceStd:  alphaFor(bars, repeat(1, n)...),
		ai:        alphaFor(bars, repeat(1, n)...),
	}

	res, err := runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if res.TradeCount != 0 || res.TotalReturn != 0 {
		t.Fatalf("conflicting signals should stay flat, got %+v", res)
	}
}

func TestSkewGatedShortEntry(t *testing.T) {
	bars := weeklyBars(100, 100, 90, 90, 90)
	n := len(bars)
	in := gateInputs{
		fast:      series.Series{},
		pricing:   alphaFor(bars, []float64{1}...),
		fastSkew:  series.Series{},
		priceSkew: alphaFor(bars, []float64{1}...),
		priceStd:  alphaFor(bars, repeat(1, n)...),
		ai:        alphaFor(bars, []float64{1}...),
	}

	res, err := runSkewGated(zerolog.Nop(), in, bars, skewCfg())
	if err != nil {
		t.Fatalf("runSkewGated returned error: %v", err)
	}
	if res.TradeCount != 1 || res.Trades[0].Side != Short {
		t.Fatalf("expected one short trade, got %+v", res.Trades)
	}
	// Short through a -10% bar earns +10%.
	if math.Abs(res.TotalReturn-0.10) > 1e-12 {
		t.Fatalf("expected total return 0.10, got %v", res.TotalReturn)
	}
}

func TestRunSkewGatedDeterministic(t *testing.T) {
	bars := trendingBars(200)
	calc := alpha.NewCalculator()

	first, err := RunSkewGated(zerolog.Nop(), calc, bars, skewCfg())
	if err != nil {
		t.Fatalf("RunSkewGated returned error: %v", err)
	}
	if first.Strategy != string(StrategySkewGated) {
		t.Fatalf("unexpected strategy name: %s", first.Strategy)
	}
	second, err := RunSkewGated(zerolog.Nop(), calc, bars, skewCfg())
	if err != nil {
		t.Fatalf("second RunSkewGated returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical runs differ:\n%+v\n%+v", first, second)
	}
}

func TestRunSkewGatedShortSample(t *testing.T) {
	// 30 bars cannot fill the pricing window, so no signal exists.
	bars := trendingBars(30)
	calc := alpha.NewCalculator()
	if _, err := RunSkewGated(zerolog.Nop(), calc, bars, skewCfg()); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestSkewGateSweep(t *testing.T) {
	bars := trendingBars(200)
	calc := alpha.NewCalculator()
	thresholds := []float64{0.5, 0.75, 1.0, 1.25}

	results, err := SkewGateSweep(zerolog.Nop(), calc, bars, skewCfg(), thresholds)
	if err != nil {
		t.Fatalf("SkewGateSweep returned error: %v", err)
	}
	if len(results) != len(thresholds) {
		t.Fatalf("expected %d results, got %d", len(thresholds), len(results))
	}
	if results[1].Strategy != "skew_asymmetry@0.75" {
		t.Fatalf("sweep results should carry the threshold in the name, got %s", results[1].Strategy)
	}
}
