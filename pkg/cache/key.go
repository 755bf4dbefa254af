package cache

const keyPrefix = "image:"

// Key returns the Redis key for the binary image body.
// The target URL is used verbatim, exactly as extracted from the request
// path, so identical URLs always map to identical keys.
//
// Example:
//
//	image:https://example.com/logo.png
func Key(targetURL string) string {
	return keyPrefix + targetURL
}

// HeaderKey returns the Redis key for the serialized header subset that
// accompanies the body under Key.
//
// Example:
//
//	image:https://example.com/logo.png:headers
func HeaderKey(targetURL string) string {
	return Key(targetURL) + ":headers"
}
