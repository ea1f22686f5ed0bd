package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthorizationGate turns the token verified by jwtauth.Verifier into an
// auth.Identity on the request context. Requests without a valid access
// token stop here with 401.
func AuthorizationGate(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
				response.HandleError(w, auth.ErrUnauthenticated)
				return
			}
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			identity, err := jwtService.IdentityFromToken(r.Context(), token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		}
		return http.HandlerFunc(hfn)
	}
}
