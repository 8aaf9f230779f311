package verify

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

func weekly(vals ...float64) series.Series {
	base := time.Date(2022, 1, 7, 0, 0, 0, 0, time.UTC)
	points := make([]series.Point, len(vals))
	for i, v := range vals {
		points[i] = series.Point{Ts: base.AddDate(0, 0, 7*i), Value: v}
	}
	return series.New(points)
}

func TestCompareSelf(t *testing.T) {
	s := weekly(0.1, -0.4, 0.7, 0.2, -0.9, 1.3, 0.0, 0.5, -0.2, 0.8, 1.1, -0.6)
	comparator := NewComparator(10)

	rec, err := comparator.Compare(alpha.MeanReversion, s, s)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if math.Abs(rec.Correlation-1.0) > 1e-12 {
		t.Fatalf("self-comparison correlation should be 1.0, got %v", rec.Correlation)
	}
	if rec.MAE != 0 {
		t.Fatalf("self-comparison MAE should be 0, got %v", rec.MAE)
	}
	if rec.N != s.Len() {
		t.Fatalf("expected N=%d, got %d", s.Len(), rec.N)
	}
}

func TestCompareConstantOffset(t *testing.T) {
	a := weekly(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b := weekly(1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5, 10.5)
	rec, err := NewComparator(10).Compare(alpha.TrendFollowing, a, b)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if math.Abs(rec.Correlation-1.0) > 1e-12 {
		t.Fatalf("offset series should still correlate at 1.0, got %v", rec.Correlation)
	}
	if math.Abs(rec.MAE-0.5) > 1e-12 {
		t.Fatalf("expected MAE 0.5, got %v", rec.MAE)
	}
}

func TestCompareInsufficientOverlap(t *testing.T) {
	a := weekly(1, 2, 3)
	b := weekly(1, 2, 3)
	_, err := NewComparator(10).Compare(alpha.Hybrid, a, b)
	if !errors.Is(err, ErrInsufficientOverlap) {
		t.Fatalf("expected ErrInsufficientOverlap, got %v", err)
	}
}

func TestCompareAlignsByDate(t *testing.T) {
	a := weekly(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	// Reference missing two interior weeks: inner join drops them.
	pts := a.Points()
	refPts := append(append([]series.Point{}, pts[:5]...), pts[7:]...)
	b := series.New(refPts)

	rec, err := NewComparator(10).Compare(alpha.MeanReversion, a, b)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if rec.N != 10 {
		t.Fatalf("expected 10 aligned observations, got %d", rec.N)
	}
	if rec.MAE != 0 {
		t.Fatalf("identical aligned values should give MAE 0, got %v", rec.MAE)
	}
}

func TestCompareZeroVarianceCorrelationNaN(t *testing.T) {
	a := weekly(1, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	b := weekly(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	rec, err := NewComparator(10).Compare(alpha.Hybrid, a, b)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if !math.IsNaN(rec.Correlation) {
		t.Fatalf("zero variance should report NaN correlation, got %v", rec.Correlation)
	}
}

func TestWeeklyRecomputeLandsOnFridayGrid(t *testing.T) {
	// 120 daily bars starting on a Monday; the pricing window (60 days)
	// leaves plenty of defined values to resample.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.Bar, 120)
	px := 100.0
	for i := range bars {
		bars[i] = marketdata.Bar{Ts: base.AddDate(0, 0, i), Close: px}
		if i%2 == 0 {
			px *= 1.01
		} else {
			px *= 0.995
		}
	}

	out, err := WeeklyRecompute(alpha.NewCalculator(), alpha.VerificationTypes(), bars)
	if err != nil {
		t.Fatalf("WeeklyRecompute returned error: %v", err)
	}
	for _, typ := range alpha.VerificationTypes() {
		s, ok := out[typ]
		if !ok || s.Len() == 0 {
			t.Fatalf("%s: expected defined weekly values", typ)
		}
		daily, _ := alpha.NewCalculator().Compute(typ, bars)
		if s.Len() >= daily.Len() {
			t.Fatalf("%s: weekly series should be shorter than daily (%d vs %d)", typ, s.Len(), daily.Len())
		}
		for i := 0; i < s.Len(); i++ {
			if s.At(i).Ts.Weekday() != time.Friday {
				t.Fatalf("%s: point %d stamped %s, want Friday", typ, i, s.At(i).Ts.Weekday())
			}
		}
	}
}

func TestLoadReference(t *testing.T) {
	ref, err := LoadReference(filepath.Join("testdata", "reference.csv"))
	if err != nil {
		t.Fatalf("LoadReference returned error: %v", err)
	}
	mr, ok := ref[alpha.MeanReversion]
	if !ok {
		t.Fatalf("missing alpha_mr series")
	}
	if mr.Len() != 3 {
		t.Fatalf("expected 3 alpha_mr rows, got %d", mr.Len())
	}
	v, ok := mr.Value(time.Date(2022, 1, 14, 0, 0, 0, 0, time.UTC))
	if !ok || math.Abs(v-(-0.42)) > 1e-12 {
		t.Fatalf("unexpected alpha_mr value: %v ok=%v", v, ok)
	}
	if _, ok := ref[alpha.TrendFollowing]; !ok {
		t.Fatalf("missing alpha_tf series")
	}
}

func TestLoadReferenceMissingFile(t *testing.T) {
	if _, err := LoadReference(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
