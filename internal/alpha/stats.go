package alpha

import (
	"math"

	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// RollingSkewness is the trailing 20-period skewness of a signal, the
// quantity the asymmetry strategy thresholds on.
func RollingSkewness(s series.Series) series.Series {
	return s.RollingSkew(SkewWindow, SkewMinPeriods)
}

// AsymmetryIndex is the ratio of the variance of positive deviations
// from the mean to the variance of negative deviations. Falls back to
// 1.0 (symmetric) when either side is empty or degenerate.
func AsymmetryIndex(values []float64) float64 {
	if len(values) < 5 {
		return 1.0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	mean := total / float64(len(values))

	var pos, neg []float64
	for _, v := range values {
		switch {
		case v > mean:
			pos = append(pos, v-mean)
		case v < mean:
			neg = append(neg, v-mean)
		}
	}
	if len(pos) < 2 || len(neg) < 2 {
		return 1.0
	}
	negVar := sampleVariance(neg)
	if negVar == 0 {
		return 1.0
	}
	return sampleVariance(pos) / negVar
}

// RollingAsymmetryIndex applies AsymmetryIndex over a trailing window.
func RollingAsymmetryIndex(s series.Series, window, minPeriods int) series.Series {
	points := make([]series.Point, 0, s.Len())
	vals := s.Values()
	for i := minPeriods - 1; i < len(vals); i++ {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		points = append(points, series.Point{Ts: s.At(i).Ts, Value: AsymmetryIndex(vals[lo : i+1])})
	}
	return series.New(points)
}

// Summary holds the full-sample distribution statistics reported per
// signal: skewness, excess kurtosis, asymmetry index, and the positive
// rate (share of observations above zero).
type Summary struct {
	Type           Type
	N              int
	Skewness       float64
	Kurtosis       float64
	AsymmetryIndex float64
	PositiveRate   float64
}

// Summarize computes the distribution statistics of a signal series.
func Summarize(t Type, s series.Series) Summary {
	vals := s.Values()
	sum := Summary{Type: t, N: len(vals)}
	if len(vals) == 0 {
		sum.Skewness = math.NaN()
		sum.Kurtosis = math.NaN()
		sum.AsymmetryIndex = 1.0
		return sum
	}

	var total, positives float64
	for _, v := range vals {
		total += v
		if v > 0 {
			positives++
		}
	}
	mean := total / float64(len(vals))
	var m2, m3, m4 float64
	for _, v := range vals {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(vals))
	m2 /= n
	m3 /= n
	m4 /= n

	if m2 == 0 {
		sum.Skewness = math.NaN()
		sum.Kurtosis = math.NaN()
	} else {
		sum.Skewness = m3 / math.Pow(m2, 1.5)
		sum.Kurtosis = m4/(m2*m2) - 3
	}
	sum.AsymmetryIndex = AsymmetryIndex(vals)
	sum.PositiveRate = positives / n
	return sum
}

func sampleVariance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	mean := total / float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(vals)-1)
}
