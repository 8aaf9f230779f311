package series

import (
	"math"
	"sort"
)

// Rolling windows use only the current and prior observations. Every
// helper below emits a value for timestamp t computed exclusively from
// observations at or before t; perturbing a later observation can never
// change an earlier output.

// RollingMean returns the mean over the trailing window observations.
func (s Series) RollingMean(window int) Series {
	return s.rollingApply(window, window, mean)
}

// RollingStd returns the sample standard deviation (n-1 denominator)
// over the trailing window, emitting values once minPeriods observations
// exist. Windows with fewer than two observations are undefined.
func (s Series) RollingStd(window, minPeriods int) Series {
	return s.rollingApply(window, minPeriods, sampleStd)
}

// RollingQuantile returns the linearly interpolated q-quantile over the
// trailing window, emitting values once minPeriods observations exist.
func (s Series) RollingQuantile(window, minPeriods int, q float64) Series {
	return s.rollingApply(window, minPeriods, func(vals []float64) float64 {
		return quantile(vals, q)
	})
}

// RollingSkew returns the third standardized moment (biased estimator)
// over the trailing window, emitting values once minPeriods observations
// exist. Zero-variance windows are undefined.
func (s Series) RollingSkew(window, minPeriods int) Series {
	return s.rollingApply(window, minPeriods, skewness)
}

// RollingCorr computes the trailing-window Pearson correlation between
// two series over their timestamp intersection.
func RollingCorr(a, b Series, window int) Series {
	x, y := Align(a, b)
	if window < 2 || x.Len() < window {
		return Series{}
	}
	points := make([]Point, 0, x.Len()-window+1)
	for i := window - 1; i < x.Len(); i++ {
		xs := make([]float64, 0, window)
		ys := make([]float64, 0, window)
		for j := i - window + 1; j <= i; j++ {
			xs = append(xs, x.At(j).Value)
			ys = append(ys, y.At(j).Value)
		}
		r := Pearson(xs, ys)
		if math.IsNaN(r) {
			continue
		}
		points = append(points, Point{Ts: x.At(i).Ts, Value: r})
	}
	return Series{points: points}
}

func (s Series) rollingApply(window, minPeriods int, fn func([]float64) float64) Series {
	if window < 1 || minPeriods < 1 {
		return Series{}
	}
	if minPeriods > window {
		minPeriods = window
	}
	if len(s.points) < minPeriods {
		return Series{}
	}
	points := make([]Point, 0, len(s.points)-minPeriods+1)
	buf := make([]float64, 0, window)
	for i := minPeriods - 1; i < len(s.points); i++ {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		buf = buf[:0]
		for j := lo; j <= i; j++ {
			buf = append(buf, s.points[j].Value)
		}
		v := fn(buf)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, Point{Ts: s.points[i].Ts, Value: v})
	}
	return Series{points: points}
}

// Pearson computes the Pearson correlation of two equal-length samples.
// NaN when fewer than two points or either sample has zero variance.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return math.NaN()
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

func skewness(vals []float64) float64 {
	n := float64(len(vals))
	if n < 3 {
		return math.NaN()
	}
	m := mean(vals)
	var m2, m3 float64
	for _, v := range vals {
		d := v - m
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return math.NaN()
	}
	return m3 / math.Pow(m2, 1.5)
}

// quantile interpolates linearly between order statistics, matching the
// convention the reference alpha dataset was produced with.
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		q = 0
	}
	if q >= 1 {
		q = 1
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
