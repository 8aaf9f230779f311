package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// StubProvider emits deterministic synthetic bars, useful for tests and
// offline work. Prices follow a seeded sinusoidal walk so the same
// symbol and range always reproduce the same series.
type StubProvider struct{}

// NewStubProvider constructs the synthetic provider.
func NewStubProvider() *StubProvider { return &StubProvider{} }

// History generates one bar per interval step in [start, end).
func (p *StubProvider) History(_ context.Context, symbol string, start, end time.Time, interval Interval) ([]Bar, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}
	seed := float64(hashSymbol(symbol)%997) / 997

	step := interval.Duration()
	bars := make([]Bar, 0, int(end.Sub(start)/step)+1)
	px := 100 * (1 + seed)
	i := 0
	for ts := start; ts.Before(end); ts = ts.Add(step) {
		drift := 0.001 * math.Sin(seed*7+float64(i)/9)
		wiggle := 0.004 * math.Sin(seed*31+float64(i)/3)
		px *= 1 + drift + wiggle
		bars = append(bars, Bar{
			Ts:     ts,
			Open:   px * 0.999,
			High:   px * 1.002,
			Low:    px * 0.998,
			Close:  px,
			Volume: 1000 + 100*math.Abs(math.Sin(float64(i))),
		})
		i++
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}
	return bars, nil
}

func hashSymbol(symbol string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return h.Sum32()
}
