package common

const (
	// MaxFormBody limits URL-encoded submission bodies accepted by the web front.
	MaxFormBody = 1 << 20
	// ContentTypeHTML is sent with every page and error body.
	ContentTypeHTML = "text/html; charset=utf-8"
	// DefaultContentType is used for static assets with an unknown extension.
	DefaultContentType = "application/octet-stream"
)
