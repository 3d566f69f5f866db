package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/domain"
	"github.com/tessera-contracts/tessera/internal/errs"
	"github.com/tessera-contracts/tessera/internal/idutil"
	"github.com/tessera-contracts/tessera/internal/logging"
	"github.com/tessera-contracts/tessera/internal/metrics"
	"github.com/tessera-contracts/tessera/internal/ratelimit"
)

// corsMiddleware builds the permissive-by-default CORS policy every
// endpoint is served behind, following the teacher's go-chi/cors wiring.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// requestIDMiddleware echoes an inbound X-Request-ID or mints a fresh one,
// attaching it to the request context and every response, per spec.md §6
// "Every response carries X-Request-ID (echoing inbound or newly minted)".
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = idutil.New()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(withRequestID(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware converts a panic in a handler into the standard error
// envelope instead of letting net/http close the connection bare.
func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered serving request",
						logging.NewFields().Component("httpapi").Operation("recover").
							RequestID(requestIDFrom(r.Context())).Zap()...)
					writeError(w, r, errs.New(errs.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records request counts and latency against reg,
// labeled by route pattern rather than raw path so high-cardinality path
// parameters never blow up the series count.
func metricsMiddleware(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			if reg == nil {
				return
			}
			route := routePattern(r)
			reg.HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			reg.HTTPRequests.WithLabelValues(route, statusClass(rw.status)).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// authMiddleware resolves a Principal from the Authorization header (API
// key) or, failing that, a signed session cookie, per spec.md §4.6. A
// request with neither is rejected before it ever reaches a handler.
func authMiddleware(authenticator *auth.Authenticator, sessions *sessionCodec, users userLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header != "" {
				const prefix = "Bearer "
				if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
					writeError(w, r, errs.New(errs.CodeInvalidAuthHeader, "Authorization header must be 'Bearer <key>'"))
					return
				}
				p, err := authenticator.Authenticate(r.Context(), header[len(prefix):])
				if err != nil {
					writeError(w, r, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
				return
			}

			if sessions != nil && users != nil {
				if cookie, err := r.Cookie(sessionCookieName); err == nil {
					userID, ok := sessions.Verify(cookie.Value)
					if ok {
						if u, err := users.GetUser(r.Context(), userID); err == nil && u.IsActive() {
							next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), auth.PrincipalFromUser(u))))
							return
						}
					}
				}
			}

			writeError(w, r, errs.New(errs.CodeMissingAPIKey, "Authorization header or session cookie is required"))
		})
	}
}

// rateLimitMiddleware enforces internal/ratelimit's per-bucket ceilings,
// picking the bucket by HTTP method (GET/HEAD = read, everything else =
// write). The admin bucket is not consulted here, and no scope is checked:
// admin-only routes pass through requireScope(ScopeAdmin) at the route level.
func rateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			p := principalFrom(r.Context())
			scope := domain.ScopeRead
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				scope = domain.ScopeWrite
			}
			if !limiter.Allow(p.RateLimitKey(), scope) {
				writeError(w, r, errs.New(errs.CodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireScope wraps a single handler with a scope check. Every route in
// the router declares the scope it needs (read, write or admin) this way;
// rateLimitMiddleware picks a rate-limit bucket but checks no scope.
func requireScope(scope domain.Scope, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireScope(principalFrom(r.Context()), scope); err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r)
	}
}
