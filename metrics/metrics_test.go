package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware(Session))
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/rows/{row}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for _, rq := range []*http.Request{
		httptest.NewRequest("GET", "/search?q=abc", http.NoBody),
		httptest.NewRequest("POST", "/rows/7", http.NoBody),
	} {
		r.ServeHTTP(httptest.NewRecorder(), rq)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Session, "GET", "/search", "200")); v < 1 {
		t.Errorf("expected http_requests_total for /search >= 1, got %f", v)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Session, "POST", "/rows/{row}", "400")); v < 1 {
		t.Errorf("expected http_requests_total for /rows/{row} >= 1, got %f", v)
	}
}

func TestMiddlewareWithoutStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware(Public))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Public, "GET", "/health", "200"))
	unmatched := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Public, "GET", "unmatched", "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Public, "GET", "/health", "200")); v != before+1 {
		t.Errorf("expected implicit 200 to be counted - before:%v, after:%v", before, v)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(Public, "GET", "unmatched", "404")); v != unmatched+1 {
		t.Errorf("expected unmatched request to be counted - before:%v, after:%v", unmatched, v)
	}
}

func TestObserveFetch(t *testing.T) {
	before := testutil.CollectAndCount(FetchDuration)

	ObserveFetch(time.Now(), nil)
	ObserveFetch(time.Now(), errors.New("quota exceeded"))

	if after := testutil.CollectAndCount(FetchDuration); after < before || after == 0 {
		t.Errorf("expected fetch_duration_seconds to have observations, got %v", after)
	}
}

func TestObserveAuth(t *testing.T) {
	before := testutil.ToFloat64(AuthTotal.WithLabelValues("signin", "error"))

	ObserveAuth("signin", errors.New("access_denied"))

	if after := testutil.ToFloat64(AuthTotal.WithLabelValues("signin", "error")); after != before+1 {
		t.Errorf("expected auth_total{signin,error} to increase by 1 - before:%v, after:%v", before, after)
	}
}
