package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pondokdigital/pondok-backend/api/responses"
	pkgAuth "github.com/pondokdigital/pondok-backend/pkg/auth"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// operator identity. The display name becomes the actor on every ledger
// entry the request writes.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			actor := strings.TrimSpace(claims.DisplayName)
			if actor == "" {
				actor = claims.UserID.String()
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxActor, actor)
			ctx = context.WithValue(ctx, ctxRole, claims.Role)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor":      actor,
					"actor_role": claims.Role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
