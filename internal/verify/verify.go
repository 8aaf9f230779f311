// Package verify compares recomputed alpha series against the published
// reference dataset: pure computation over two immutable inputs.
package verify

import (
	"errors"
	"fmt"
	"math"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/metrics"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// ErrInsufficientOverlap signals too few aligned observations to report
// a correlation. Recoverable: the verification row is reported as
// undefined rather than failing the run.
var ErrInsufficientOverlap = errors.New("verify: insufficient overlapping observations")

// DefaultMinOverlap is the minimum aligned points for a defined record.
const DefaultMinOverlap = 10

// Record is the verification outcome for one alpha type.
type Record struct {
	Type        alpha.Type
	Correlation float64 // Pearson, in [-1, 1]
	MAE         float64 // mean absolute error, >= 0
	N           int     // aligned observations
}

// WeeklyRecompute derives each requested alpha from daily bars and
// resamples the result onto the Friday weekly grid the published
// dataset is keyed by. The alpha windows are daily by definition, so
// callers must load daily bars regardless of their reporting interval.
func WeeklyRecompute(calc *alpha.Calculator, types []alpha.Type, bars []marketdata.Bar) (map[alpha.Type]series.Series, error) {
	computed, err := calc.ComputeAll(types, bars)
	if err != nil {
		return nil, err
	}
	out := make(map[alpha.Type]series.Series, len(computed))
	for typ, s := range computed {
		out[typ] = s.ResampleWeekly()
	}
	return out, nil
}

// Comparator aligns and scores series pairs.
type Comparator struct {
	minOverlap int
}

// NewComparator builds a comparator; minOverlap <= 0 selects the default.
func NewComparator(minOverlap int) *Comparator {
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}
	return &Comparator{minOverlap: minOverlap}
}

// Compare inner-joins the recomputed and reference series by timestamp
// and computes Pearson correlation and mean absolute error over the
// aligned values. Correlation is NaN when either side has zero variance.
func (c *Comparator) Compare(t alpha.Type, recomputed, reference series.Series) (Record, error) {
	x, y := series.Align(recomputed, reference)
	if x.Len() < c.minOverlap {
		return Record{Type: t, N: x.Len()}, fmt.Errorf("%w: %s has %d aligned points, need %d",
			ErrInsufficientOverlap, t, x.Len(), c.minOverlap)
	}

	xs, ys := x.Values(), y.Values()
	var absErr float64
	for i := range xs {
		absErr += math.Abs(xs[i] - ys[i])
	}

	metrics.VerificationsTotal.WithLabelValues(string(t)).Inc()
	return Record{
		Type:        t,
		Correlation: series.Pearson(xs, ys),
		MAE:         absErr / float64(len(xs)),
		N:           x.Len(),
	}, nil
}
