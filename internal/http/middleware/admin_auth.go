package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type adminCtxKey struct{}

var (
	errNoBearer       = errors.New("no bearer token")
	errNoAdminSubject = errors.New("token has no subject")
)

// adminTokenParser accepts HMAC-signed tokens only and rejects tokens
// without an exp claim.
var adminTokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	jwt.WithExpirationRequired(),
)

// AdminJWT guards the lead admin routes (list and clear). Requests need an
// "Authorization: Bearer <jwt>" header signed with secret and carrying a
// subject. With no secret configured every request is refused.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				writeError(w, http.StatusUnauthorized, "Admin access is not configured")
				return
			}

			claims, err := verifyAdminRequest(r, key)
			switch {
			case errors.Is(err, errNoBearer):
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			case errors.Is(err, errNoAdminSubject):
				writeError(w, http.StatusForbidden, "Admin access required")
				return
			case err != nil:
				writeError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminCtxKey{}, *claims)))
		})
	}
}

func verifyAdminRequest(r *http.Request, key []byte) (*jwt.RegisteredClaims, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, errNoBearer
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := adminTokenParser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errNoAdminSubject
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}
	return raw, true
}

// AdminClaimsFromContext returns the claims of the admin token that
// authorized the request.
func AdminClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(adminCtxKey{}).(jwt.RegisteredClaims)
	return claims, ok
}
