package token

import (
	"math"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/internal/utils"
)

// Claims holds the parts of a bearer token the console cares about.
// The token is decoded, never verified: the API is the authority on
// signatures, the console only needs to know when to give up.
type Claims struct {
	Subject   string    // sub - usually the login email
	UserID    string    // userId - optional, the API also returns it on login
	Roles     []string  // roles - optional
	IssuedAt  time.Time // iat - zero when absent
	ExpiresAt time.Time // exp - always set on a decoded token
}

// Decode reads the claims of a raw bearer token.
//
// An empty token returns ErrTokenAbsent. A token that cannot be parsed, or
// that carries no readable exp claim, returns ErrTokenMalformed.
func Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.ErrTokenAbsent
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrTokenMalformed, "parse token: %s", err.Error())
	}

	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrTokenMalformed, "error extracting claims")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.Wrapf(errors.ErrTokenMalformed, "token missing exp claim")
	}

	sub, _ := claims.GetSubject()
	decoded := &Claims{
		Subject:   sub,
		ExpiresAt: exp.Time,
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		decoded.IssuedAt = iat.Time
	}

	if id, ok := utils.ToIDString(claims["userId"]); ok {
		decoded.UserID = id
	}
	decoded.Roles = utils.ToStringSlice(claims["roles"])

	return decoded, nil
}

// Remaining is exp - now, negative once the token has expired
func (c *Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// RemainingSeconds is the remaining validity floored to whole seconds and
// never below zero.
func (c *Claims) RemainingSeconds(now time.Time) int64 {
	return FloorSeconds(c.Remaining(now))
}

// FloorSeconds floors d to whole seconds, clamping at zero
func FloorSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Floor(d.Seconds()))
}
