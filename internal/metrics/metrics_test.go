package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics handler returned %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	out := scrape(t)
	want := `tracked_http_requests_total{code="418",method="GET",route="/things/{id}"} 2`
	if !strings.Contains(out, want) {
		t.Errorf("metrics output missing %q", want)
	}
	if strings.Contains(out, `route="/things/a"`) {
		t.Error("raw path leaked into route label")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	CacheRequests.WithLabelValues("hit").Inc()
	if !strings.Contains(scrape(t), "tracked_cache_requests_total") {
		t.Error("metrics output missing tracked_cache_requests_total")
	}
}
