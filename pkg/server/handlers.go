package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pixelproxy/image-proxy/pkg/cache"
	"github.com/pixelproxy/image-proxy/pkg/upstream"
)

// handleHealth reports cache store connectivity. The body conveys health,
// not the status code: a dead Redis still answers 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "connected"
	if err := s.cache.Ping(r.Context()); err != nil {
		status = "disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]string{"redis": status})
}

// handleProxy is the request pipeline: extract the target URL from the
// path, serve from cache when both cached keys are valid, otherwise fetch
// upstream, respond, and populate the cache off the response path.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	targetURL := strings.TrimPrefix(r.URL.Path, "/")

	if targetURL == "" {
		proxyResponsesTotal.WithLabelValues("400", "error").Inc()
		writeJSONError(w, http.StatusBadRequest, "No URL provided")
		return
	}

	parsed, err := url.Parse(targetURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		proxyResponsesTotal.WithLabelValues("400", "error").Inc()
		writeJSONError(w, http.StatusBadRequest, "Invalid URL provided")
		return
	}

	entry, err := s.cache.Get(r.Context(), targetURL)
	if err == nil {
		s.logger.Info().Str("target_url", targetURL).Msg("Serving cached image")
		proxyResponsesTotal.WithLabelValues("200", "cache").Inc()
		entry.Headers.Apply(w.Header())
		w.WriteHeader(http.StatusOK)
		w.Write(entry.Body)
		return
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Read failures degrade to a live fetch, never to a client error.
		s.logger.Warn().Err(err).Str("target_url", targetURL).Msg("Cache read failed")
	}

	clientID := ClientIP(r)

	// The fetch outlives a client disconnect; only the configured upstream
	// timeout bounds it.
	resp, err := s.fetcher.Fetch(context.WithoutCancel(r.Context()), parsed, clientID)
	if err != nil {
		fetchErr := upstream.Classify(err)
		proxyResponsesTotal.WithLabelValues(strconv.Itoa(fetchErr.StatusCode), "error").Inc()
		writeJSONError(w, fetchErr.StatusCode, fetchErr.Message)
		return
	}

	headers := cache.HeadersFromResponse(resp.Header)

	if resp.Cacheable() {
		cached := &cache.Entry{Body: resp.Body, Headers: headers}
		go func() {
			if err := s.cache.Set(context.Background(), targetURL, cached); err != nil {
				s.logger.Error().Err(err).Str("target_url", targetURL).Msg("Cache write failed")
			}
		}()
	}

	s.logger.Info().Str("target_url", targetURL).Msg("Proxied image")
	proxyResponsesTotal.WithLabelValues("200", "upstream").Inc()
	headers.Apply(w.Header())
	w.WriteHeader(http.StatusOK)
	w.Write(resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
