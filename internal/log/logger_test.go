package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q expected %v, got %v", in, want, got)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentTracker, Output: &buf})
	l.Info("entry recorded", FieldCourse, "Math")

	out := buf.String()
	if !strings.Contains(out, "component=tracker") || !strings.Contains(out, "course=Math") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.With(FieldWeek, 3).WithComponent(ComponentStorage).Info("saved")
	out = buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=storage") {
		t.Fatalf("expected a single storage component, got: %s", out)
	}
	if strings.Contains(out, "week=3") {
		t.Fatalf("WithComponent should drop request attributes: %s", out)
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	var seen string
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/weeks", nil))

	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id mismatch: ctx=%q header=%q", seen, rr.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if !strings.Contains(out, "request_id="+seen) || !strings.Contains(out, "status_code=418") {
		t.Fatalf("unexpected log output: %s", out)
	}

	// An incoming ID is propagated unchanged.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	h.ServeHTTP(rr, req)
	if seen != "abc123" {
		t.Fatalf("expected propagated id, got %q", seen)
	}
}
