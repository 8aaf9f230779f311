package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiofarzulla/alpha-asymmetry/internal/metrics"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches historical bars from the Yahoo Finance chart
// endpoint, the same source the published alpha dataset was built from.
type YahooProvider struct {
	log     zerolog.Logger
	client  *http.Client
	baseURL string
}

// YahooOption configures YahooProvider construction parameters.
type YahooOption func(*YahooProvider)

// WithBaseURL overrides the chart API endpoint (tests point it at a stub server).
func WithBaseURL(baseURL string) YahooOption {
	return func(p *YahooProvider) {
		if baseURL != "" {
			p.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) YahooOption {
	return func(p *YahooProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// NewYahooProvider constructs a provider with a 15s request timeout.
func NewYahooProvider(log zerolog.Logger, opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		log:     log,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultYahooBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// History loads bars for [start, end) at the given interval. Bars with a
// missing close (unpriced sessions) are dropped.
func (p *YahooProvider) History(ctx context.Context, symbol string, start, end time.Time, interval Interval) ([]Bar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		p.baseURL, url.PathEscape(symbol), start.Unix(), end.Unix(), interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "alpha-asymmetry/1.0 (verification)")

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Chart.Error != nil {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("%w: %s (%s)", ErrDataUnavailable, symbol, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	bars := decodeYahooResult(payload.Chart.Result[0])
	if len(bars) == 0 {
		metrics.FetchErrors.WithLabelValues(symbol).Inc()
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	bars = sortBars(bars)
	logGaps(p.log, symbol, bars, interval)
	metrics.BarsFetched.WithLabelValues(symbol).Add(float64(len(bars)))
	p.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("loaded price history")
	return bars, nil
}

func decodeYahooResult(result yahooChartResult) []Bar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := Bar{Ts: time.Unix(ts, 0).UTC(), Close: *quote.Close[i]}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars
}
