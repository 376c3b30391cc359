package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/handler/http/response"
)

// TokenRevocations answers whether a raw bearer token was revoked, for
// example by a logout before its expiry.
type TokenRevocations interface {
	IsTokenRevoked(token string) bool
}

func AuthRequired(ja *jwtauth.JWTAuth, revocations TokenRevocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			// A structurally valid token may still have been revoked by a
			// logout; the revocation set is keyed by the raw string.
			if revocations != nil && revocations.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.Unauthorized(w, "Token has been revoked")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
