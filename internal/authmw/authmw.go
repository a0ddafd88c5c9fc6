// Package authmw gates the evidence ingest route behind a shared bearer
// token so only configured producers can submit reports.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken returns middleware that requires an Authorization header
// carrying the expected bearer token. The comparison is constant time so
// response latency leaks nothing about the token.
func BearerToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, bearerPrefix) {
				http.Error(w, `{"error":"bearer token required"}`, http.StatusUnauthorized)
				return
			}

			got := []byte(auth[len(bearerPrefix):])

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, `{"error":"token not recognized"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
