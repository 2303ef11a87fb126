package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogpress/internal/auth"
)

const (
	corsAllowedHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID, " + auth.TokenHeader
	corsAllowedMethods = "POST, GET, OPTIONS, PUT, PATCH, DELETE"
)

// Cors allows the listed origins; a "*" entry allows any origin.
// Requests without an Origin header (curl, server-to-server) are not CORS requests and pass.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
				next.ServeHTTP(w, r)
				return
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			default:
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
			w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

			next.ServeHTTP(w, r)
		})
	}
}
