package httpmw

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenith/internal/logx"
)

type contextKey string

const (
	requestIDKey contextKey = "zenith.request_id"
	notesKey     contextKey = "zenith.access_notes"
)

func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	if h == nil {
		h = http.NotFoundHandler()
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithRequestID keeps a client X-Request-Id only when it is a UUID and mints
// one otherwise.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", rid)
		Annotate(r.Context(), "request_id", rid)
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// notes collects fields handlers attach to the access log line.
type notes struct {
	mu     sync.Mutex
	fields map[string]any
}

// Annotate adds a field to the request's access log line. It is a no-op
// outside WithAccessLog.
func Annotate(ctx context.Context, key string, value any) {
	n, _ := ctx.Value(notesKey).(*notes)
	if n == nil {
		return
	}
	n.mu.Lock()
	n.fields[key] = value
	n.mu.Unlock()
}

func WithRecover(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logx.Event(logger, "error", "panic_recovered", map[string]any{
						"request_id": RequestIDFromContext(r.Context()),
						"path":       r.URL.Path,
						"panic":      fmt.Sprint(rec),
						"stack":      string(debug.Stack()),
					})
					Annotate(r.Context(), "panic", true)
					writeError(w, r, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WithAccessLog writes one http_request line per request, carrying whatever
// the handlers attached with Annotate. 5xx lines log at error level and 429s
// at warn.
func WithAccessLog(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			n := &notes{fields: map[string]any{}}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), notesKey, n)))

			n.mu.Lock()
			fields := n.fields
			n.mu.Unlock()
			fields["method"] = r.Method
			fields["path"] = r.URL.Path
			fields["status"] = sw.status
			fields["bytes"] = sw.bytes
			fields["duration_ms"] = time.Since(start).Milliseconds()
			fields["remote_ip"] = ClientIP(r)

			level := "info"
			switch {
			case sw.status >= http.StatusInternalServerError:
				level = "error"
			case sw.status == http.StatusTooManyRequests:
				level = "warn"
			}
			logx.Event(logger, level, "http_request", fields)
		})
	}
}

// writeError answers API paths with a JSON body and everything else with
// plain text.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
		return
	}
	http.Error(w, msg, status)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// ClientIP is the socket peer address. Forwarding headers are ignored.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
