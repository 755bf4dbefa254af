// Package upstream performs the outbound image fetch and classifies its
// outcome. Each proxy request issues exactly one fetch attempt; repeats are
// absorbed by the cache, not by retries.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream fetches.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total upstream fetches by HTTP status",
	}, []string{"status"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Upstream fetch duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_errors_total",
		Help: "Total upstream fetch errors by class",
	}, []string{"class"})
)

// maxRedirects caps redirect following on the outbound fetch.
const maxRedirects = 5

// acceptHeader is tuned for image content negotiation.
const acceptHeader = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"

// Response is a successful upstream fetch (status < 400).
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response content type, or "" when absent.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsImage reports whether a content type denotes image content.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Cacheable reports whether the response may be written to the cache:
// image content with a non-empty body. Anything else is still returned to
// the client, just not cached.
func (r *Response) Cacheable() bool {
	return IsImage(r.ContentType()) && len(r.Body) > 0
}

// Client fetches images from origin servers.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates an upstream client with the given fetch timeout.
func NewClient(timeout time.Duration, userAgent string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch issues a single GET for the target URL. The client identifier is
// forwarded in X-Forwarded-For; Origin and Referer are forged from the
// target itself so picky origins serve hotlink-protected images.
//
// The returned error is always a classified *Error.
func (c *Client) Fetch(ctx context.Context, target *url.URL, clientID string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, Classify(fmt.Errorf("create request: %w", err))
	}

	origin := target.Scheme + "://" + target.Host
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("X-Forwarded-For", clientID)
	req.Header.Set("X-Forwarded-Host", target.Host)
	req.Header.Set("X-Forwarded-Proto", target.Scheme)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// Accept-Encoding is left to the transport so gzip bodies arrive decoded.

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	upstreamRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		classified := Classify(err)
		upstreamErrorsTotal.WithLabelValues(string(classified.ErrorClass)).Inc()
		c.logger.Error().
			Err(err).
			Str("target_url", target.String()).
			Str("error_class", string(classified.ErrorClass)).
			Msg("Upstream fetch failed")
		return nil, classified
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	// Any status under 400 counts as success, including 3xx responses that
	// were not auto-followed.
	if resp.StatusCode >= 400 {
		fetchErr := &Error{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassUpstream,
			Message:    "Upstream error: " + statusText(resp),
		}
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassUpstream)).Inc()
		c.logger.Warn().
			Str("target_url", target.String()).
			Int("status_code", resp.StatusCode).
			Msg("Upstream returned error status")
		return nil, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		classified := Classify(err)
		upstreamErrorsTotal.WithLabelValues(string(classified.ErrorClass)).Inc()
		return nil, classified
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// statusText extracts the reason phrase from the upstream status line,
// falling back to the standard text for the code.
func statusText(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if strings.HasPrefix(resp.Status, prefix) {
		return strings.TrimPrefix(resp.Status, prefix)
	}
	return http.StatusText(resp.StatusCode)
}
