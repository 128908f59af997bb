package server

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jrsteele09/ga-dashboard/internal/config"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/internal/metrics"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

// adapt turns net/http style middleware into the HandlerFunc form ChainMiddleware takes.
func adapt(mw func(http.Handler) http.Handler) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return mw(next).ServeHTTP
	}
}

// BaseMiddleware is applied to every route.
func (s *Server) BaseMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		adapt(chimiddleware.RequestID),
		s.LoggingMiddleware,
		adapt(chimiddleware.Recoverer),
	}
	return append(chainedMiddleWare, mw...)
}

// SessionMiddleware is for browser navigations under /auth.
func (s *Server) SessionMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := s.BaseMiddleware(
		s.RateLimitMiddleware,
		s.LoadSession,
	)
	return append(chainedMiddleWare, mw...)
}

// APIMiddleware is for XHR calls from the dashboard frontend.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := s.BaseMiddleware(
		s.CorsMiddleware,
		s.RateLimitMiddleware,
		s.LoadSession,
	)
	return append(chainedMiddleWare, mw...)
}

// LoggingMiddleware logs every request and records the HTTP metrics.
func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		event := logging.Ctx(r.Context()).Debug()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Warn()
		}
		event.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("request")
	}
}

func newCors(cfg config.CorsConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.GetAllowedOrigins(),
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// CorsMiddleware lets the configured frontend origins call the API with cookies.
func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.cors(next).ServeHTTP
}

func newRateLimiter(cfg config.CorsConfig) func(http.Handler) http.Handler {
	if cfg.GetRateLimitRequests() <= 0 {
		return nil
	}
	return httprate.Limit(
		cfg.GetRateLimitRequests(),
		cfg.GetRateLimitWindow(),
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, "Too many requests", http.StatusTooManyRequests)
		}),
	)
}

// RateLimitMiddleware throttles per client IP; a zero limit disables it.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.rateLimit == nil {
		return next
	}
	return s.rateLimit(next).ServeHTTP
}
