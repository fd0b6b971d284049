package middleware

import (
	"compress/gzip"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithGzip compresses JSON and text responses for clients that accept gzip.
var WithGzip = chimw.Compress(gzip.DefaultCompression, "application/json", "text/plain")
