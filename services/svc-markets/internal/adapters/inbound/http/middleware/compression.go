package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

var compressibleTypes = []string{
	"application/json",
	"text/plain",
}

// Compression negotiates br, gzip or deflate for JSON responses. Brotli is
// preferred when the client accepts it.
func Compression(level int) func(http.Handler) http.Handler {
	compressor := chimiddleware.NewCompressor(level, compressibleTypes...)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	return compressor.Handler
}
