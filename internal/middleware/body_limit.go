package middleware

import (
	"net/http"

	"github.com/2beens/blogpress/pkg"
)

const DefaultMaxBodyBytes int64 = 10 << 20

// LimitRequestBody caps the request body; handlers see *http.MaxBytesError once it is exceeded.
func LimitRequestBody(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				pkg.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
