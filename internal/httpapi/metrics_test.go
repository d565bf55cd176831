package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestItoa(t *testing.T) {
	for n, want := range map[int]string{0: "0", 200: "200", 404: "404", 503: "503"} {
		if got := itoa(n); got != want {
			t.Fatalf("itoa(%d) = %q", n, got)
		}
	}
}

func TestStatusRecorderCapturesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: 200}
	sr.WriteHeader(http.StatusTeapot)
	if sr.status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Fatalf("sr=%d rec=%d", sr.status, rec.Code)
	}
}

func TestRoutePatternFallsBackToPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	if got := routePatternOrPath(r); got != "/whatever" {
		t.Fatalf("got %q", got)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	called := false
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called || w.Code != http.StatusNoContent {
		t.Fatalf("called=%v code=%d", called, w.Code)
	}
}
