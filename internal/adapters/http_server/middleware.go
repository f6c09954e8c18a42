package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"minihotel/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *srw) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &srw{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		observability.ObserveHTTP(route, r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			ev := l.Info()
			if sw.Status() >= http.StatusInternalServerError {
				ev = l.Error()
			}
			ev.
				Str("route", route).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", clientIP(r)).
				Str("ua", r.UserAgent()).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http_request")
		})
	}
}

// ---- Per-client rate limiting ----

// maxLimiters bounds the number of clients tracked at once.
const maxLimiters = 10000

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	max      int

	// an entry idle this long has a full bucket again and can be dropped
	idle time.Duration
	now  func() time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	if burst <= 0 {
		burst = 1
	}
	idle := time.Duration(float64(burst) / rps * float64(time.Second))
	if idle < time.Second {
		idle = time.Second
	}
	return &limiterStore{
		limiters: map[string]*limiterEntry{},
		rps:      rate.Limit(rps),
		burst:    burst,
		max:      maxLimiters,
		idle:     idle,
		now:      time.Now,
	}
}

// get returns the limiter for a client, creating one on first sight.
func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.limiters[ip]
	if !ok {
		if len(s.limiters) >= s.max {
			s.prune(now)
		}
		e = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[ip] = e
	}
	e.seen = now
	return e.lim
}

// prune drops idle entries; when none are idle it drops the least recently
// seen one. Callers hold mu.
func (s *limiterStore) prune(now time.Time) {
	var oldestIP string
	var oldest time.Time
	for ip, e := range s.limiters {
		if now.Sub(e.seen) > s.idle {
			delete(s.limiters, ip)
			continue
		}
		if oldestIP == "" || e.seen.Before(oldest) {
			oldestIP, oldest = ip, e.seen
		}
	}
	if len(s.limiters) >= s.max && oldestIP != "" {
		delete(s.limiters, oldestIP)
	}
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// clientIP is the host part of the connection address. Forwarding headers
// only count when chimw.RealIP has been mounted to rewrite RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// RateLimit allows each client rps requests per second with the given burst.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	return newLimiterStore(rps, burst).middleware
}

func (s *limiterStore) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.get(clientIP(r)).Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
