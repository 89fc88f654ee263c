package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Minter issues and verifies HS256 tokens shaped like the ones the employee
// API hands out. The console never mints tokens itself; the fake API and
// the tests do.
type Minter struct {
	secret []byte
	issuer string
}

// NewMinter creates a minter signing with the given shared secret
func NewMinter(secret, issuer string) *Minter {
	return &Minter{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Mint creates a signed token for subject expiring after ttl
func (m *Minter) Mint(subject, userID string, roles []string, ttl time.Duration) (string, error) {
	return m.MintUntil(subject, userID, roles, NowTimeFunc().Add(ttl))
}

// MintUntil creates a signed token with an absolute expiry
func (m *Minter) MintUntil(subject, userID string, roles []string, expiresAt time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"iss":    m.issuer,
		"sub":    subject,
		"userId": userID,
		"iat":    NowTimeFunc().Unix(),
		"exp":    expiresAt.Unix(),
		"jti":    uuid.New().String(),
	}
	if len(roles) > 0 {
		claims["roles"] = roles
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claims
func (m *Minter) Verify(rawToken string) (*Claims, error) {
	parsed, err := jwtlib.Parse(rawToken, m.verificationKey,
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return Decode(rawToken)
}

func (m *Minter) verificationKey(t *jwtlib.Token) (any, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return m.secret, nil
}
