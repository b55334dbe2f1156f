package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const accessTokenType = "access"

// AuthRequired runs after jwtauth.Verifier. It only admits access tokens that
// carry a company, so handlers can rely on auth.ClaimsFromContext succeeding.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, raw, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if tokenType, _ := raw["type"].(string); tokenType != accessTokenType {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if _, err := auth.ClaimsFromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
