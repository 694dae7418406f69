package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/leadcapture-api/internal/http/middleware"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewIssuer(Config{
		Secret:       "secret",
		Username:     "admin",
		PasswordHash: string(hash),
		TTL:          time.Hour,
	})
}

func TestIssuer_Login(t *testing.T) {
	issuer := testIssuer(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.Login("admin", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), token.ExpiresAt)

	claims := jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token.Token, &claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "leadcapture-api", claims.Issuer)
}

func TestIssuer_LoginRejectsBadCredentials(t *testing.T) {
	issuer := testIssuer(t)

	_, err := issuer.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = issuer.Login("root", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssuer_Disabled(t *testing.T) {
	issuer := NewIssuer(Config{Secret: "secret"})
	assert.False(t, issuer.Enabled())

	_, err := issuer.Login("admin", "anything")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	hash, err := HashPassword("long enough")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("long enough")))
}

func TestIssuedTokenPassesAdminMiddleware(t *testing.T) {
	token, err := testIssuer(t).Issue("admin")
	require.NoError(t, err)

	called := false
	handler := middleware.AdminJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestLoginHandler(t *testing.T) {
	handler := NewHandler(testIssuer(t), logging.Discard())

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"success", `{"username":"admin","password":"correct horse"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"token"`)
				assert.Contains(t, rec.Body.String(), `"expiresAt"`)
			}
		})
	}
}
