package observability_test

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"estate_dashboard/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so they show up in the output
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveLoad("csv", nil, 3*time.Millisecond)
	observability.ObserveLoad("csv", errors.New("boom"), time.Millisecond)
	observability.SetDatasetRows(42)
	observability.ObserveFiltered(7)
	observability.ObserveCache("redis", "miss")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"estate_http_requests_total",
		`estate_dataset_loads_total{result="ok",source="csv"}`,
		`estate_dataset_loads_total{result="error",source="csv"}`,
		"estate_dataset_rows 42",
		"estate_filtered_rows_count",
		"estate_cache_events_total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestNewLogger_Level(t *testing.T) {
	if got := observability.NewLogger("prod", "debug").GetLevel().String(); got != "debug" {
		t.Fatalf("level: got %s, want debug", got)
	}
	if got := observability.NewLogger("dev", "nonsense").GetLevel().String(); got != "info" {
		t.Fatalf("fallback level: got %s, want info", got)
	}
}

func TestServe_InjectedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "estate", Name: "serve_test_total", Help: "test."})
	reg.MustRegister(counter)
	counter.Inc()

	// pick a free port, then hand it to Serve
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	observability.Serve(addr, reg)

	var out string
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		res, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			body, _ := io.ReadAll(res.Body)
			res.Body.Close()
			out = string(body)
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(out, "estate_serve_test_total 1") {
		t.Fatalf("injected registry not served, got %q", out)
	}
	if strings.Contains(out, "go_goroutines") {
		t.Fatalf("default registry collectors leaked into output")
	}
}
