// Package server wires the HTTP surface of the image proxy: CORS, rate
// limiting, access logging, the health endpoint, and the proxy pipeline
// itself.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pixelproxy/image-proxy/pkg/cache"
	"github.com/pixelproxy/image-proxy/pkg/ratelimit"
	"github.com/pixelproxy/image-proxy/pkg/upstream"
)

// proxyResponsesTotal counts proxy responses by status and cache outcome.
var proxyResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "proxy_responses_total",
	Help: "Total proxy responses by HTTP status and source",
}, []string{"status", "source"}) // source: "cache", "upstream", "error"

// Server handles incoming proxy requests.
type Server struct {
	router  chi.Router
	cache   *cache.Manager
	limiter *ratelimit.Limiter
	fetcher *upstream.Client
	logger  zerolog.Logger
}

// Options holds the collaborators for a Server.
type Options struct {
	Cache   *cache.Manager
	Limiter *ratelimit.Limiter
	Fetcher *upstream.Client
	Logger  zerolog.Logger
}

// New builds the router. Middleware order mirrors the request pipeline:
// access logging, rate limiting, then CORS annotation before any route
// logic runs. OPTIONS preflights are answered by the CORS layer.
func New(opts Options) *Server {
	s := &Server{
		cache:   opts.Cache,
		limiter: opts.Limiter,
		fetcher: opts.Fetcher,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(accessLogger(opts.Logger))
	r.Use(s.rateLimit)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/*", s.handleProxy)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
