package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountersAndHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveAPI("GET", "/api/products/by-score", StatusLabel(200), 20*time.Millisecond)
	m.ObserveDeltaCall("ok", 5*time.Millisecond)
	m.ObserveDeltaCall("ok", 7*time.Millisecond)
	m.ObserveScoreUpdate("ok", 3, 2)
	m.ObserveFeed("ok", 4)

	if got := testutil.ToFloat64(m.deltaCalls.WithLabelValues("ok")); got != 2 {
		t.Fatalf("delta calls: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.scoreRowsUpdated.WithLabelValues("color")); got != 3 {
		t.Fatalf("color rows: want=3 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("handler status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wtg_api_requests_total") {
		t.Fatalf("expected api counter in exposition")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveDeltaCall("error", time.Millisecond)
	m.SetBreakerState("scoring", 2)
	m.ObserveScoreUpdate("error", 0, 0)
	m.ObserveFeed("empty", 0)
	m.IncIdempotency("duplicate")
	m.ApiInflightInc()
	m.ApiInflightDec()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status: %d", rec.Code)
	}
}
