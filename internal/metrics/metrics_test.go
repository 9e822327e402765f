package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	handler := Middleware("/test/{id}")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/test/{id}", "418"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/42", nil))

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/test/{id}", "418"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestMiddlewareDefaultsToOK(t *testing.T) {
	handler := Middleware("/ok")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hi"))
	}))

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/ok", "200"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/ok", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestRefererDenialsCounter(t *testing.T) {
	before := testutil.ToFloat64(RefererDenials)
	RefererDenials.Inc()
	if after := testutil.ToFloat64(RefererDenials); after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestHandlerServesScrapeOutput(t *testing.T) {
	UpstreamFetches.WithLabelValues("ok").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "instaproxy_upstream_fetches_total") {
		t.Error("scrape output missing instaproxy_upstream_fetches_total")
	}
}
