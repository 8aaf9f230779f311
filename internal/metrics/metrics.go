package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	BarsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_bars_fetched_total", Help: "Price bars returned by the market data provider"},
		[]string{"symbol"},
	)
	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_fetch_errors_total", Help: "Failed market data history requests"},
		[]string{"symbol"},
	)
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Backtest runs completed"},
		[]string{"strategy"},
	)
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "verifications_total", Help: "Alpha verification comparisons computed"},
		[]string{"alpha"},
	)
)

func init() {
	prometheus.MustRegister(BarsFetched, FetchErrors, BacktestsTotal, VerificationsTotal)
}

func Serve(log zerolog.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
