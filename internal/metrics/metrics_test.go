package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(zerolog.Nop(), ":0")
	defer srv.Close()

	BarsFetched.WithLabelValues("EURJPY=X").Add(10)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "price_bars_fetched_total" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("price_bars_fetched_total metric not found")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServeLogsListenFailure(t *testing.T) {
	var buf syncBuffer
	log := zerolog.New(&buf)

	srv := Serve(log, "not a listen address")
	defer srv.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "metrics server stopped") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected listen failure to be logged, got %q", buf.String())
}
