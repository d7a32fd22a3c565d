package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"estate_dashboard/internal/adapters/csvsource"
	server "estate_dashboard/internal/adapters/http_server"
	"estate_dashboard/internal/adapters/observability"
	redisad "estate_dashboard/internal/adapters/redis"
	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
)

const listingsCSV = `Price,Bedrooms,Bathrooms,SquareFeet,Latitude,Longitude
150000,2,1,900,37.7749,-122.4194
600000,4,3,2500,37.8044,-122.2712
425000,3,2,1650,37.7600,-122.4400
980000,5,3,3400,37.7900,-122.4000
`

// ---------- helpers ----------

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func startAPI(t *testing.T, path string, cache domain.Cache) *httptest.Server {
	t.Helper()
	return startAPIWith(t, csvsource.New(path), cache)
}

func startAPIWithSource(t *testing.T, src domain.ListingSource) *httptest.Server {
	t.Helper()
	return startAPIWith(t, src, nil)
}

func startAPIWith(t *testing.T, src domain.ListingSource, cache domain.Cache) *httptest.Server {
	t.Helper()
	reg := observability.InitRegistry()
	tables := app.NewTableCache(src)
	s := server.New(server.Options{Timeout: 5 * time.Second})
	s.Mount("/metrics", observability.MetricsHandler(reg))
	s.MountHandlers(&server.Handlers{Q: app.NewQueryService(tables, cache, time.Minute), Ready: tables.Loaded})
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if v != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_Dashboard(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	ts := startAPI(t, writeCSV(t, listingsCSV), cache)

	var ov domain.OverviewView
	if code := getJSON(t, ts.URL+"/v1/overview", &ov); code != http.StatusOK {
		t.Fatalf("overview status %d", code)
	}
	if ov.Total != 4 || len(ov.Head) != 4 {
		t.Fatalf("unexpected overview: %+v", ov)
	}
	if code := getJSON(t, ts.URL+"/readyz", nil); code != http.StatusOK {
		t.Fatalf("readyz status %d after load", code)
	}

	url := fmt.Sprintf("%s/v1/dashboard?price_min=%d&price_max=%d&bedrooms_min=2", ts.URL, 100000, 700000)
	var dv domain.DashboardView
	if code := getJSON(t, url, &dv); code != http.StatusOK {
		t.Fatalf("dashboard status %d", code)
	}
	if dv.Total != 4 || dv.Matched != 3 {
		t.Fatalf("matched %d of %d, want 3 of 4", dv.Matched, dv.Total)
	}
	for _, l := range dv.Table.Rows {
		if l.Size != l.Price/2000 {
			t.Fatalf("row %d size %v, want %v", l.Row, l.Size, l.Price/2000)
		}
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one cached dashboard, got keys %v", mr.Keys())
	}

	// second identical request is served from redis
	var again domain.DashboardView
	getJSON(t, url, &again)
	if again.Insights.Count != dv.Insights.Count || again.Insights.AveragePrice != dv.Insights.AveragePrice {
		t.Fatalf("cached insights differ: %+v vs %+v", again.Insights, dv.Insights)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected cache reuse, got keys %v", mr.Keys())
	}

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", res.StatusCode)
	}
}

func TestHTTP_EndToEnd_MissingDataset(t *testing.T) {
	ts := startAPI(t, filepath.Join(t.TempDir(), "missing.csv"), nil)

	if code := getJSON(t, ts.URL+"/v1/listings", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("listings status %d, want 503", code)
	}
	if code := getJSON(t, ts.URL+"/readyz", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status %d, want 503", code)
	}
}
