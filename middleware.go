package daylog

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"

	"daylog/internal/record"
)

const maxBodySnapshot = 64 << 10

// Middleware wraps next so that every request is traced through LogRequest.
func (l *Logger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.LogRequest(w, r, next)
	})
}

// LogRequest writes a request record, hands the request to next, and writes
// a response record once next has completed the response. If next panics no
// response record is written. Write failures cannot reach the HTTP client and
// are reported on the diagnostics logger instead.
func (l *Logger) LogRequest(w http.ResponseWriter, r *http.Request, next http.Handler) {
	start := l.clock.Now()
	begin := time.Now()

	info := record.HTTP{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		IP:      clientIP(r),
		Headers: r.Header.Clone(),
		Query:   r.URL.Query(),
		Params:  routeParams(r),
	}
	if l.opts.CaptureBody {
		info.Body = snapshotBody(r)
	}
	l.report(l.write(record.Request{Time: start, Level: LevelInfo, HTTP: info}), record.KindRequest)

	status := http.StatusOK
	wrote := false
	ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				if !wrote && code >= http.StatusOK {
					status, wrote = code, true
				}
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				wrote = true
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				wrote = true
				return next(src)
			}
		},
	})

	finish := onFinish(func() {
		end := l.clock.Now()
		resp := record.Response{
			Time:         end,
			Level:        LevelInfo,
			HTTP:         record.HTTP{Method: info.Method, URL: info.URL, IP: info.IP, Headers: w.Header().Clone()},
			Status:       status,
			ResponseTime: l.elapsed(start, end, begin),
		}
		l.report(l.write(resp), record.KindResponse)
	})
	next.ServeHTTP(ww, r)
	finish()
}

// onFinish returns a function that runs fn the first time it is called.
func onFinish(fn func()) func() {
	var once sync.Once
	return func() { once.Do(fn) }
}

// elapsed returns the response time in milliseconds for the configured mode.
// Legacy mode only looks at the millisecond-of-second fields of start and end.
func (l *Logger) elapsed(start, end, begin time.Time) int64 {
	if l.opts.ResponseTime == ResponseTimeMonotonic {
		return time.Since(begin).Milliseconds()
	}
	return int64(end.Nanosecond()/int(time.Millisecond) - start.Nanosecond()/int(time.Millisecond))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routeParams returns the wildcard values of the ServeMux pattern that
// matched r, if any. Requests that have not been routed yet carry no pattern.
func routeParams(r *http.Request) map[string]string {
	if r.Pattern == "" {
		return nil
	}
	var params map[string]string
	for _, seg := range strings.Split(r.Pattern, "/") {
		if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := strings.TrimSuffix(seg[1:len(seg)-1], "...")
		if name == "$" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = r.PathValue(name)
	}
	return params
}

// snapshotBody reads up to maxBodySnapshot bytes of the body and puts them
// back in front of the unread remainder.
func snapshotBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	buf, _ := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	return buf
}
