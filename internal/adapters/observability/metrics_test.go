package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are exported
	observability.ObserveHTTP("/djangoapp/get_cars", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("sentiment", "/analyze", 200, 3*time.Millisecond)
	observability.ObserveSentiment("neutral", "unavailable")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"dealership_http_requests_total",
		"dealership_external_requests_total",
		`dealership_sentiment_results_total{label="neutral",provenance="unavailable"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
