package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/tomora/internal/http/helpers"
	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/rate"
)

// ClientIP extrae la IP del cliente (X-Forwarded-For primero, luego RemoteAddr).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithRateLimit limita requests por IP con una ventana fija.
// Si el limiter falla (ej: redis caído) el request pasa: disponibilidad
// por sobre throttling.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			res, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				logger.From(r.Context()).Warn("rate limit exceeded",
					logger.ClientIP(ip),
					logger.Duration(res.RetryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				helpers.WriteError(w, helpers.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
