// Package auth issues the admin tokens accepted by middleware.AdminJWT.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLoginDisabled is returned when no admin account is configured.
	ErrLoginDisabled = errors.New("admin login is not configured")
)

const (
	DefaultTokenTTL = 12 * time.Hour
	tokenIssuer     = "leadcapture-api"
)

// Config describes the single admin account.
type Config struct {
	Secret       string
	Username     string
	PasswordHash string
	TTL          time.Duration
}

// Issuer checks admin credentials and signs HS256 tokens.
type Issuer struct {
	secret       []byte
	username     string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

// Token is a signed admin token and its expiry.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewIssuer builds an issuer. A missing secret, username or hash leaves login
// disabled rather than failing startup.
func NewIssuer(cfg Config) *Issuer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &Issuer{
		secret:       []byte(cfg.Secret),
		username:     strings.TrimSpace(cfg.Username),
		passwordHash: []byte(strings.TrimSpace(cfg.PasswordHash)),
		ttl:          cfg.TTL,
		now:          time.Now,
	}
}

// Enabled reports whether the issuer can hand out tokens.
func (i *Issuer) Enabled() bool {
	return len(i.secret) > 0 && i.username != "" && len(i.passwordHash) > 0
}

// Login verifies the credentials and returns a fresh token.
func (i *Issuer) Login(username, password string) (*Token, error) {
	if !i.Enabled() {
		return nil, ErrLoginDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(i.username)) == 1
	// Always run bcrypt so an unknown username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(i.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return i.Issue(i.username)
}

// Issue signs a token for subject without checking credentials.
func (i *Issuer) Issue(subject string) (*Token, error) {
	if len(i.secret) == 0 {
		return nil, ErrLoginDisabled
	}
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// HashPassword returns the bcrypt hash to store in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("auth: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
