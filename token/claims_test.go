package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/token"
	"github.com/stretchr/testify/require"
)

func unsignedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("absent", func(t *testing.T) {
		_, err := token.Decode("   ")
		require.ErrorIs(t, err, errors.ErrTokenAbsent)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := token.Decode("not-a-token")
		require.ErrorIs(t, err, errors.ErrTokenMalformed)
	})

	t.Run("bad base64 payload", func(t *testing.T) {
		_, err := token.Decode("eyJhbGciOiJIUzI1NiJ9.%%%.sig")
		require.ErrorIs(t, err, errors.ErrTokenMalformed)
	})

	t.Run("missing exp", func(t *testing.T) {
		raw := unsignedToken(t, jwtlib.MapClaims{"sub": "admin@example.com"})
		_, err := token.Decode(raw)
		require.ErrorIs(t, err, errors.ErrTokenMalformed)
	})

	t.Run("signature is not checked", func(t *testing.T) {
		raw := unsignedToken(t, jwtlib.MapClaims{
			"sub":    "admin@example.com",
			"userId": float64(42),
			"roles":  []any{"ADMIN", 7},
			"exp":    exp.Unix(),
			"iat":    exp.Add(-time.Hour).Unix(),
		})
		claims, err := token.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, "admin@example.com", claims.Subject)
		require.Equal(t, "42", claims.UserID)
		require.Equal(t, []string{"ADMIN"}, claims.Roles)
		require.True(t, claims.ExpiresAt.Equal(exp))
		require.True(t, claims.IssuedAt.Equal(exp.Add(-time.Hour)))
	})

	t.Run("expired tokens still decode", func(t *testing.T) {
		raw := unsignedToken(t, jwtlib.MapClaims{"exp": int64(1)})
		claims, err := token.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, int64(1), claims.ExpiresAt.Unix())
	})
}

func TestClaims_RemainingSeconds(t *testing.T) {
	now := time.Unix(1_000, 0)
	claims := &token.Claims{ExpiresAt: time.Unix(1_005, 0)}

	require.Equal(t, int64(5), claims.RemainingSeconds(now))
	require.Equal(t, int64(4), claims.RemainingSeconds(now.Add(250*time.Millisecond)))
	require.Equal(t, int64(0), claims.RemainingSeconds(now.Add(5*time.Second)))
	require.Equal(t, int64(0), claims.RemainingSeconds(now.Add(time.Minute)))
	require.Equal(t, -55*time.Second, claims.Remaining(now.Add(time.Minute)))
}

func TestMinter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	m := token.NewMinter("secret", "employee-api")

	raw, err := m.Mint("admin@example.com", "1", []string{"ADMIN"}, time.Hour)
	require.NoError(t, err)

	claims, err := m.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "1", claims.UserID)
	require.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	t.Run("wrong secret", func(t *testing.T) {
		_, err := token.NewMinter("other", "employee-api").Verify(raw)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := m.MintUntil("admin@example.com", "1", nil, now.Add(-time.Second))
		require.NoError(t, err)
		_, err = m.Verify(old)
		require.Error(t, err)

		// Decode still reads it; expiry is the monitor's decision
		claims, err := token.Decode(old)
		require.NoError(t, err)
		require.Equal(t, int64(0), claims.RemainingSeconds(now))
	})
}
