package cache

import (
	"net/http"
)

// ResponseHeaders is the subset of upstream headers that is forwarded to
// clients and persisted alongside cached image bodies. Fields are omitted
// from the serialized form when the upstream response did not carry them.
type ResponseHeaders struct {
	ContentType  string `json:"Content-Type,omitempty"`
	CacheControl string `json:"Cache-Control,omitempty"`
	ETag         string `json:"ETag,omitempty"`
}

// HeadersFromResponse extracts the forwarded header subset from an upstream
// response header set.
func HeadersFromResponse(h http.Header) ResponseHeaders {
	return ResponseHeaders{
		ContentType:  h.Get("Content-Type"),
		CacheControl: h.Get("Cache-Control"),
		ETag:         h.Get("ETag"),
	}
}

// Apply sets the non-empty header fields on dst.
func (h ResponseHeaders) Apply(dst http.Header) {
	if h.ContentType != "" {
		dst.Set("Content-Type", h.ContentType)
	}
	if h.CacheControl != "" {
		dst.Set("Cache-Control", h.CacheControl)
	}
	if h.ETag != "" {
		dst.Set("ETag", h.ETag)
	}
}

// Entry represents a cached image: the raw body together with the header
// subset captured at fetch time.
type Entry struct {
	Body    []byte
	Headers ResponseHeaders
}
