package sliding

import (
	"net/http"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/server/auth"
)

// Middleware returns an HTTP stage that puts a renewed token in header
// whenever r decides to renew the request's bearer token. The request is
// always passed to next.
func Middleware(r *Renewer, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if raw, ok := auth.BearerToken(req.Header.Get(common.AuthorizationHeaderName)); ok {
				if tok, ok := r.Renew(req.Context(), raw); ok {
					w.Header().Set(header, tok.Raw)
				}
			}
			next.ServeHTTP(w, req)
		})
	}
}
