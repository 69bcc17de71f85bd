package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/api/responses"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	pkgAuth "github.com/phantomos-app/phantomos-backend/pkg/auth"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the caller
// identity. When demo mode is enabled, requests that present no credentials
// at all act as the demo publisher; a presented token is always verified and
// never falls through to the demo identity.
func Auth(jwtCfg config.JWTConfig, demoCfg config.DemoConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	demoPublisherID := uuid.Nil
	if demoCfg.Enabled && demoCfg.PublisherID != "" {
		if parsed, err := uuid.Parse(demoCfg.PublisherID); err == nil {
			demoPublisherID = parsed
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))

			if raw == "" {
				if demoPublisherID == uuid.Nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}

				identity := tenant.Demo(demoPublisherID)
				ctx := tenant.WithIdentity(r.Context(), identity)
				if logg != nil {
					ctx = logg.WithPublisherID(ctx, demoPublisherID.String())
					ctx = logg.WithActorRole(ctx, "demo")
				}
				next.ServeHTTP(w, r.WithContext(ctx))
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

			claims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			identity := tenant.User(claims.UserID, claims.PublisherID, claims.Role)
			ctx := tenant.WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithPublisherID(ctx, claims.PublisherID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
