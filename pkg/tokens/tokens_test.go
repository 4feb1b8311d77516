package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestSignAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	exp := time.Now().Add(15 * time.Minute).UTC()

	tok, err := SignAccess(accessSecret, userID, RoleAdmin, exp)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	good, err := SignAccess(accessSecret, "u", RoleUser, time.Now().Add(time.Minute))
	require.NoError(t, err)
	expired, err := SignAccess(accessSecret, "u", RoleUser, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "wrong secret", token: good, secret: []byte("other")},
		{name: "expired", token: expired, secret: accessSecret},
		{name: "alg none", token: none, secret: accessSecret},
		{name: "garbage", token: "not.a.jwt", secret: accessSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := AccessClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}

	_, err = AccessClaimsFromToken(expired, accessSecret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestSignRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	tok, jti, err := SignRefresh(refreshSecret, userID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := RefreshClaimsFromToken(tok, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, userID, claims.Subject)

	_, err = RefreshClaimsFromToken(tok, accessSecret)
	require.Error(t, err)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Sha256Hex(""))
	assert.Len(t, Sha256Hex("token"), 64)
}
