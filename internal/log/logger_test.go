package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponentTagging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentStorage).InfoContext(context.Background(), "Document saved", FieldBytes, 42)
	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "bytes=42") {
		t.Fatalf("unexpected record: %s", out)
	}
	if logger.Component() != ComponentApp {
		t.Errorf("WithComponent must not change the parent")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	if FromContext(IntoContext(context.Background(), logger)) != logger {
		t.Fatal("logger not carried by context")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	var inner *Logger
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if inner == nil || inner.Component() != ComponentHTTP {
		t.Fatalf("handler did not get the request logger")
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=418", "path=/api/state", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("record misses %q: %s", want, out)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpSave).WithEdit("set_note").WithError(nil).WithHTTPResponse(500, 3)
	if f[FieldOperation] != OpSave || f[FieldEdit] != "set_note" || f[FieldSuccess] != false {
		t.Fatalf("unexpected fields %+v", f)
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error must not add a field")
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() has %d items for %d fields", got, len(f))
	}
}
