package cache

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHeadersFromResponse(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "image/png")
	h.Set("Cache-Control", "max-age=3600")
	h.Set("ETag", `"abc123"`)
	h.Set("X-Unrelated", "dropped")

	headers := HeadersFromResponse(h)

	if headers.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", headers.ContentType)
	}
	if headers.CacheControl != "max-age=3600" {
		t.Errorf("CacheControl = %q, want max-age=3600", headers.CacheControl)
	}
	if headers.ETag != `"abc123"` {
		t.Errorf("ETag = %q, want \"abc123\"", headers.ETag)
	}
}

func TestResponseHeaders_MarshalOmitsAbsent(t *testing.T) {
	headers := ResponseHeaders{ContentType: "image/jpeg"}

	data, err := json.Marshal(headers)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"Content-Type":"image/jpeg"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestResponseHeaders_Apply(t *testing.T) {
	headers := ResponseHeaders{
		ContentType: "image/webp",
		ETag:        `"xyz"`,
	}

	dst := http.Header{}
	headers.Apply(dst)

	if got := dst.Get("Content-Type"); got != "image/webp" {
		t.Errorf("Content-Type = %q, want image/webp", got)
	}
	if got := dst.Get("ETag"); got != `"xyz"` {
		t.Errorf("ETag = %q, want \"xyz\"", got)
	}
	if _, ok := dst["Cache-Control"]; ok {
		t.Error("Cache-Control should not be set when absent upstream")
	}
}
