package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, 0)

	token, err := svc.Issue(42, "ada@example.com")
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Email: "ada@example.com"}, identity)
}

func TestTokenExpiresAfterSevenDays(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(1, "a@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(7*24*time.Hour - time.Minute) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(7*24*time.Hour + time.Minute) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejections(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	claims := Claims{
		UserID: 1,
		Email:  "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherSecret, err := NewTokenService("another-secret", time.Hour).Issue(1, "a@example.com")
	require.NoError(t, err)

	valid, err := svc.Issue(1, "a@example.com")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:            "a@example.com",
		RegisteredClaims: claims.RegisteredClaims,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"alg none":     unsigned,
		"alg HS512":    hs512,
		"wrong secret": otherSecret,
		"tampered":     tampered,
		"no expiry":    noExpiry,
		"no user id":   noUser,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokensCarryDistinctIDs(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	a, err := svc.Issue(1, "a@example.com")
	require.NoError(t, err)
	b, err := svc.Issue(1, "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
