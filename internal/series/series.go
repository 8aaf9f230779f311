// Package series provides ordered time-indexed value sequences and the
// rolling-window primitives shared by the alpha calculator, the
// verification comparator, and the backtest engine. A Series stores only
// defined observations: a timestamp with insufficient history is simply
// absent, never coerced to zero.
package series

import (
	"math"
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Ts    time.Time
	Value float64
}

// Series is an immutable ordered sequence of observations with strictly
// increasing timestamps. NaN values are dropped on construction.
type Series struct {
	points []Point
}

// New builds a series from arbitrary points: sorted by timestamp,
// duplicates collapsed (first occurrence wins), NaN values dropped.
func New(points []Point) Series {
	cleaned := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		cleaned = append(cleaned, p)
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return cleaned[i].Ts.Before(cleaned[j].Ts) })
	deduped := cleaned[:0]
	for _, p := range cleaned {
		if len(deduped) > 0 && deduped[len(deduped)-1].Ts.Equal(p.Ts) {
			continue
		}
		deduped = append(deduped, p)
	}
	return Series{points: deduped}
}

// Len reports the number of defined observations.
func (s Series) Len() int { return len(s.points) }

// At returns the i-th observation in time order.
func (s Series) At(i int) Point { return s.points[i] }

// Points returns a copy of the underlying observations.
func (s Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Values returns the observation values in time order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Value looks up the observation at an exact timestamp.
func (s Series) Value(ts time.Time) (float64, bool) {
	idx := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Ts.Before(ts) })
	if idx < len(s.points) && s.points[idx].Ts.Equal(ts) {
		return s.points[idx].Value, true
	}
	return 0, false
}

// First returns the earliest observation, if any.
func (s Series) First() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[0], true
}

// Last returns the latest observation, if any.
func (s Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Lag shifts values forward by n observations: the value observed at
// position i becomes the value reported at position i+n. The first n
// timestamps become undefined.
func (s Series) Lag(n int) Series {
	if n <= 0 || n >= len(s.points) {
		if n <= 0 {
			return New(s.points)
		}
		return Series{}
	}
	points := make([]Point, 0, len(s.points)-n)
	for i := n; i < len(s.points); i++ {
		points = append(points, Point{Ts: s.points[i].Ts, Value: s.points[i-n].Value})
	}
	return Series{points: points}
}

// PctChange returns the fractional change over n observations:
// v[i]/v[i-n] - 1, defined from the n-th observation onward. Entries
// where the base value is zero are undefined.
func (s Series) PctChange(n int) Series {
	if n <= 0 || n >= len(s.points) {
		return Series{}
	}
	points := make([]Point, 0, len(s.points)-n)
	for i := n; i < len(s.points); i++ {
		base := s.points[i-n].Value
		if base == 0 {
			continue
		}
		points = append(points, Point{Ts: s.points[i].Ts, Value: s.points[i].Value/base - 1})
	}
	return Series{points: points}
}

// Combine merges two series over their timestamp intersection using fn.
func Combine(a, b Series, fn func(x, y float64) float64) Series {
	x, y := Align(a, b)
	points := make([]Point, 0, x.Len())
	for i := 0; i < x.Len(); i++ {
		points = append(points, Point{Ts: x.At(i).Ts, Value: fn(x.At(i).Value, y.At(i).Value)})
	}
	return New(points)
}

// Align inner-joins two series by timestamp, returning sub-series that
// share an identical timestamp index.
func Align(a, b Series) (Series, Series) {
	outA := make([]Point, 0, min(len(a.points), len(b.points)))
	outB := make([]Point, 0, cap(outA))
	i, j := 0, 0
	for i < len(a.points) && j < len(b.points) {
		switch {
		case a.points[i].Ts.Before(b.points[j].Ts):
			i++
		case b.points[j].Ts.Before(a.points[i].Ts):
			j++
		default:
			outA = append(outA, a.points[i])
			outB = append(outB, b.points[j])
			i++
			j++
		}
	}
	return Series{points: outA}, Series{points: outB}
}

// ResampleWeekly buckets observations into weeks ending on Friday and
// keeps the last observation of each bucket, stamped with the bucket's
// Friday. Daily signals aggregate to the weekly grid this way.
func (s Series) ResampleWeekly() Series {
	if len(s.points) == 0 {
		return Series{}
	}
	points := make([]Point, 0, len(s.points)/4+1)
	var currentFri time.Time
	for _, p := range s.points {
		fri := fridayOnOrAfter(p.Ts)
		if !fri.Equal(currentFri) {
			points = append(points, Point{Ts: fri, Value: p.Value})
			currentFri = fri
			continue
		}
		points[len(points)-1].Value = p.Value
	}
	return Series{points: points}
}

func fridayOnOrAfter(ts time.Time) time.Time {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}
