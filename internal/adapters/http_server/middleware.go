package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/domain"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// recorder remembers the status and body size a handler produced.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *recorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// filterNote is filled by handlers that ran a range selection so the access
// log and metrics can report it.
type filterNote struct {
	set     bool
	sel     domain.RangeSelection
	matched int
	total   int
}

type noteKey struct{}

// noteFilter records the outcome of a selection on the request, if the
// request passed through Observe.
func noteFilter(r *http.Request, sel domain.RangeSelection, matched, total int) {
	if n, ok := r.Context().Value(noteKey{}).(*filterNote); ok {
		n.set, n.sel, n.matched, n.total = true, sel, matched, total
	}
}

// Observe records request metrics and writes one access log line per
// request. Filtering routes add the selection and the matched row count.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			note := &filterNote{}
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), noteKey{}, note)))
			dur := time.Since(start)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			observability.ObserveHTTP(route, r.Method, rec.code(), dur)

			ev := l.Info()
			if rec.code() >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			ev = ev.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", route).
				Str("method", r.Method).
				Int("status", rec.code()).
				Int("bytes", rec.bytes).
				Dur("duration", dur).
				Str("remote", clientHost(r.RemoteAddr))
			if note.set {
				observability.ObserveFiltered(note.matched)
				ev = ev.
					Int("matched", note.matched).
					Int("total", note.total).
					Floats64("price", []float64{note.sel.Price.Min, note.sel.Price.Max}).
					Floats64("bedrooms", []float64{note.sel.Bedrooms.Min, note.sel.Bedrooms.Max}).
					Floats64("bathrooms", []float64{note.sel.Bathrooms.Min, note.sel.Bathrooms.Max}).
					Floats64("sqft", []float64{note.sel.SquareFeet.Min, note.sel.SquareFeet.Max})
			}
			ev.Msg("http_request")
		})
	}
}

// clientHost strips the port; chi's RealIP has already applied
// X-Forwarded-For / X-Real-IP to RemoteAddr.
func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

// RateLimit applies one token bucket shared by all clients.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = int(rps) + 1
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				w.Header().Set("Retry-After", "1")
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "request rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
