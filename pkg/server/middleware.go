package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/pixelproxy/image-proxy/pkg/ratelimit"
)

// accessLogExclusions are paths that never appear in access logs.
var accessLogExclusions = map[string]struct{}{
	"/health":      {},
	"/favicon.ico": {},
	"/metrics":     {},
}

// accessLogger attaches a request-scoped logger with a request ID and logs
// one line per handled request, skipping excluded paths.
func accessLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chain := hlog.NewHandler(logger)(
			hlog.RequestIDHandler("req_id", "Request-Id")(
				hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
					hlog.FromRequest(r).Info().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("client_ip", ClientIP(r)).
						Int("status_code", status).
						Int("size", size).
						Dur("duration", duration).
						Msg("Request handled")
				})(next)))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, excluded := accessLogExclusions[r.URL.Path]; excluded {
				next.ServeHTTP(w, r)
				return
			}
			chain.ServeHTTP(w, r)
		})
	}
}

// rateLimit gates every request on the per-client counter. Internal network
// clients bypass the limiter entirely; a limiter store failure admits the
// request so a Redis outage degrades the proxy instead of killing it.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ClientIP(r)

		if ratelimit.IsInternal(clientID) {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.limiter.Allow(r.Context(), clientID)
		if err != nil {
			s.logger.Warn().Err(err).Str("client_ip", clientID).
				Msg("Rate limit check failed, admitting request")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too Many Requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
