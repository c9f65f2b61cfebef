package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,h" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		out, _ := http.NewRequest(http.MethodGet, "http://upstream/events", nil)
		PropagateRequestID(r.Context(), out)
		if out.Header.Get(RequestIDHeader) != seen {
			t.Errorf("request id not propagated")
		}
		w.WriteHeader(http.StatusTeapot)
	}), WithRequestID, WithAccessLog(logger))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/book/alice", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if seen != "abc" || rw.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected request id abc, got %q / %q", seen, rw.Header().Get(RequestIDHeader))
	}
	if !strings.Contains(buf.String(), `"status":418`) || !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Fatalf("unexpected access log %s", buf.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		codes = append(codes, rw.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := WithCORS(CORSPolicy{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/book/alice", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rw.Code)
	}
	if rw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected allow origin %q", rw.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestWriteJSON(t *testing.T) {
	rw := httptest.NewRecorder()
	WriteJSON(rw, http.StatusCreated, map[string]string{"id": "x"})
	if rw.Code != http.StatusCreated || strings.TrimSpace(rw.Body.String()) != `{"id":"x"}` {
		t.Fatalf("unexpected response %d %q", rw.Code, rw.Body.String())
	}

	rw = httptest.NewRecorder()
	WriteJSON(rw, http.StatusOK, func() {})
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unmarshalable value, got %d", rw.Code)
	}
}

func TestRateLimiterWindowResetAndRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if _, ok := rl.take("a"); !ok {
		t.Fatal("first request must pass")
	}
	now = now.Add(20 * time.Second)
	wait, ok := rl.take("a")
	if ok || wait != 40*time.Second {
		t.Fatalf("expected rejection with 40s wait, got ok=%v wait=%s", ok, wait)
	}
	if _, ok := rl.take("b"); !ok {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(time.Minute)
	if _, ok := rl.take("a"); !ok {
		t.Fatal("window must reset")
	}
	if len(rl.windows) != 1 {
		t.Fatalf("expected expired windows to be swept, have %d", len(rl.windows))
	}

	rw := httptest.NewRecorder()
	tooManyRequests(rw, 1500*time.Millisecond)
	if rw.Code != http.StatusTooManyRequests || rw.Header().Get("Retry-After") != "2" {
		t.Fatalf("unexpected 429 response %d retry-after=%q", rw.Code, rw.Header().Get("Retry-After"))
	}
}

func TestCORSOrigins(t *testing.T) {
	h := WithCORS(CORSPolicy{
		AllowedOrigins: []string{"https://app.example.com", "https://*.meetings.test"},
		AllowedMethods: []string{"GET"},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		origin string
		method string
		want   string
		status int
	}{
		{"https://app.example.com", http.MethodGet, "https://app.example.com", http.StatusOK},
		{"https://alice.meetings.test", http.MethodGet, "https://alice.meetings.test", http.StatusOK},
		{"https://a.b.meetings.test", http.MethodGet, "", http.StatusOK},
		{"http://alice.meetings.test", http.MethodGet, "", http.StatusOK},
		{"https://evil.com", http.MethodGet, "", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/api/v1/book/alice", nil)
		req.Header.Set("Origin", tc.origin)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		if got := rw.Header().Get("Access-Control-Allow-Origin"); got != tc.want || rw.Code != tc.status {
			t.Fatalf("%s: got origin %q status %d", tc.origin, got, rw.Code)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/book/alice", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("expected disallowed preflight method to be rejected, got %d", rw.Code)
	}
}

func TestWithTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := WithTimeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !hasDeadline {
		t.Fatal("expected request context deadline")
	}
}

func TestWithRecover(t *testing.T) {
	var buf bytes.Buffer
	h := WithRecover(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusInternalServerError || !strings.Contains(buf.String(), "handler panic") {
		t.Fatalf("unexpected recovery: %d %s", rw.Code, buf.String())
	}
}

func TestRequestIDRejectsOversizedIDs(t *testing.T) {
	h := WithRequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if got := rw.Header().Get(RequestIDHeader); len(got) != 32 {
		t.Fatalf("expected a generated id, got %q", got)
	}
}
