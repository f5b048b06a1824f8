package daylog

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func benchLogger(b *testing.B) *Logger {
	b.Helper()
	opts := DefaultOptions()
	opts.LogFolder = filepath.Join(b.TempDir(), "logs")
	opts.StartMessage = false
	opts.Console = io.Discard
	l, err := New(opts)
	if err != nil {
		b.Fatalf("new: %v", err)
	}
	return l
}

// BenchmarkInfo writes one message to the file and console sinks.
func BenchmarkInfo(b *testing.B) {
	l := benchLogger(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := l.Info("bench"); err != nil {
			b.Fatalf("info: %v", err)
		}
	}
}

// BenchmarkMiddleware traces a request through both sinks.
func BenchmarkMiddleware(b *testing.B) {
	l := benchLogger(b)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/bench", nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
