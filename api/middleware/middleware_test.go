package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/usermanagement/pkg/logger"
)

func TestRequestIDPropagatesHeader(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-123" {
		t.Fatalf("expected request id in context, got %q", seen)
	}
	if rec.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id echoed")
	}
}

func TestRequestIDMintsWhenMissingOrTooLong(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, incoming := range []string{"", strings.Repeat("x", maxRequestIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(requestIDHeader, incoming)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := rec.Header().Get(requestIDHeader)
		if got == "" || got == incoming {
			t.Fatalf("expected a minted id, got %q", got)
		}
	}
}

func TestLoggingWritesStartAndComplete(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	router := chi.NewRouter()
	router.Use(RequestID(logg), Logging(logg))
	router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})

	req := httptest.NewRequest(http.MethodGet, "/users/99", nil)
	req.Header.Set(requestIDHeader, "trace-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var complete map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &complete); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if complete["message"] != "request.complete" {
		t.Fatalf("unexpected message %v", complete["message"])
	}
	if complete["route"] != "/users/{id}" {
		t.Fatalf("expected route pattern, got %v", complete["route"])
	}
	if complete["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected status 404, got %v", complete["status"])
	}
	if complete["bytes"] != float64(4) {
		t.Fatalf("expected 4 bytes, got %v", complete["bytes"])
	}
	if complete["request_id"] != "trace-1" {
		t.Fatalf("expected request id field, got %v", complete["request_id"])
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("panic value leaked to client: %s", rec.Body.String())
	}
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

type observation struct {
	method string
	route  string
	status int
}

type fakeObserver struct {
	seen []observation
}

func (f *fakeObserver) Observe(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, observation{method: method, route: route, status: status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &fakeObserver{}
	router := chi.NewRouter()
	router.Use(Metrics(observer))
	router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere/abc", nil))

	if len(observer.seen) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observer.seen))
	}
	if got := observer.seen[0]; got.route != "/users/{id}" || got.status != http.StatusOK || got.method != http.MethodGet {
		t.Fatalf("unexpected observation %+v", got)
	}
	if got := observer.seen[1]; got.route != "" || got.status != http.StatusNotFound {
		t.Fatalf("expected unmatched route to be blank, got %+v", got)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/1", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 198.51.100.7 , 10.0.0.1")
	if got := clientIP(req); got != "198.51.100.7" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:8080"
	if got := clientIP(req); got != "192.0.2.4" {
		t.Fatalf("expected remote host, got %q", got)
	}
}
