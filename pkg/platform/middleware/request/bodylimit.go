package request

import (
	"net/http"
)

// BodyLimit caps request bodies with http.MaxBytesReader. Reads beyond the
// limit fail and the server answers 413 Request Entity Too Large.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
