package http

import (
	"net/http"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer
// token, validates it, and — on success — stores the authenticated
// [models.Principal] in the request context before delegating to the next
// handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized when the
// header is absent, malformed, or the token fails validation (bad
// signature, wrong issuer, expired, missing claims).
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		principal, err := utils.ValidateAndParseJWTToken(tokenString, h.app.TokenSignKey, h.app.TokenIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		// Store the principal in the context so that downstream handlers
		// can retrieve it without re-parsing the token.
		ctx := utils.WithPrincipal(r.Context(), principal)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
