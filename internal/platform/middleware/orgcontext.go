// Package middleware holds HTTP middleware that depends on server
// configuration, currently the organization-context resolver.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/requestcontext"
)

// OrgClaims are the token claims this core requires. Identity resolution
// itself is an external concern; the token is the boundary contract.
type OrgClaims struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RequireOrgContext validates the bearer token and stores organization id,
// actor id, and role in the request context. Every operation behind this
// middleware can assume an organization scope is present.
func RequireOrgContext(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := parseClaims(token, signingKey)
			if err != nil {
				logger.WarnContext(ctx, "rejected request with invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			orgID, err := domain.ParseOrgID(claims.OrgID)
			if err != nil {
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "token missing organization scope"))
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "token missing role"))
				return
			}

			ctx = requestcontext.WithOrgID(ctx, orgID)
			ctx = requestcontext.WithActorID(ctx, claims.Subject)
			ctx = requestcontext.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseClaims(token, signingKey string) (*OrgClaims, error) {
	claims := &OrgClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token invalid")
	}
	return claims, nil
}
