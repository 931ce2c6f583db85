package middleware

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

// ETag hashes content with xxhash into a quoted strong entity tag.
func ETag(content []byte) string {
	sum := make([]byte, 8)
	binary.BigEndian.PutUint64(sum, xxhash.Sum64(content))

	return `"` + hex.EncodeToString(sum) + `"`
}

type bufferedResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	if w.statusCode == 0 {
		w.statusCode = code
	}
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}

	return w.body.Write(b)
}

// ConditionalGET tags successful GET responses and answers 304 Not Modified
// when If-None-Match carries the current tag.
func ConditionalGET(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)

			return
		}

		buffered := &bufferedResponseWriter{ResponseWriter: w}

		next.ServeHTTP(buffered, r)

		if buffered.statusCode == 0 {
			buffered.statusCode = http.StatusOK
		}

		if buffered.statusCode == http.StatusOK {
			etag := ETag(buffered.body.Bytes())
			w.Header().Set(headerETag, etag)

			if etagMatches(r.Header.Get(headerIfNoneMatch), etag) {
				w.Header().Del("Content-Type")
				w.WriteHeader(http.StatusNotModified)

				return
			}
		}

		w.WriteHeader(buffered.statusCode)
		_, _ = w.Write(buffered.body.Bytes())
	})
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || candidate == "W/"+etag {
			return true
		}
	}

	return false
}
