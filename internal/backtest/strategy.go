package backtest

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/metrics"
)

// Strategy names one of the three published strategy variants. All
// share the engine's state machine and differ only in which alpha
// series feeds the threshold rule.
type Strategy string

const (
	// StrategyAsymmetry trades the combined signal.
	StrategyAsymmetry Strategy = "asymmetry"
	// StrategyMomentum trades the trend-following alpha.
	StrategyMomentum Strategy = "momentum"
	// StrategyMeanReversion trades the pricing alpha with the entry
	// rule sign-inverted relative to momentum.
	StrategyMeanReversion Strategy = "mean_reversion"
)

// Strategies lists the published comparison set in report order.
func Strategies() []Strategy {
	return []Strategy{StrategyAsymmetry, StrategyMomentum, StrategyMeanReversion}
}

// AlphaType maps the strategy to the signal it thresholds.
func (s Strategy) AlphaType() alpha.Type {
	switch s {
	case StrategyMomentum:
		return alpha.TrendFollowing
	case StrategyMeanReversion:
		return alpha.MeanReversion
	default:
		return alpha.Hybrid
	}
}

// Inverted reports whether the strategy flips the entry rule sign.
func (s Strategy) Inverted() bool { return s == StrategyMeanReversion }

// RunStrategy derives the strategy's alpha from the bar sequence and
// executes one engine pass.
func RunStrategy(log zerolog.Logger, s Strategy, calc *alpha.Calculator, bars []marketdata.Bar, cfg Config) (Result, error) {
	signal, err := calc.Compute(s.AlphaType(), bars)
	if err != nil {
		return Result{}, fmt.Errorf("compute %s alpha: %w", s.AlphaType(), err)
	}
	cfg.Invert = s.Inverted()
	engine := NewEngine(log, cfg)
	res, err := engine.Run(string(s), signal, bars)
	if err != nil {
		return Result{}, err
	}
	metrics.BacktestsTotal.WithLabelValues(string(s)).Inc()
	return res, nil
}

// ThresholdSweep reruns one strategy across entry thresholds, one
// result per threshold in input order (the sensitivity table).
func ThresholdSweep(log zerolog.Logger, s Strategy, calc *alpha.Calculator, bars []marketdata.Bar, cfg Config, thresholds []float64) ([]Result, error) {
	out := make([]Result, 0, len(thresholds))
	for _, th := range thresholds {
		runCfg := cfg
		runCfg.EntryThreshold = th
		res, err := RunStrategy(log, s, calc, bars, runCfg)
		if err != nil {
			return nil, fmt.Errorf("threshold %.2f: %w", th, err)
		}
		res.Strategy = fmt.Sprintf("%s@%.2f", s, th)
		out = append(out, res)
	}
	return out, nil
}
