package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token, err := GenerateAccessToken("fan@example.com", 42, expiry, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, AccessTokenAudienceName, testSecret)
	require.NoError(t, err)
	require.Equal(t, "fan@example.com", claims.Email)
	require.Equal(t, Issuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int32(42), userID)
}

func TestTokenAudienceSeparation(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	accessToken, err := GenerateAccessToken("fan@example.com", 1, expiry, testSecret)
	require.NoError(t, err)
	refreshToken, err := GenerateRefreshToken("fan@example.com", 1, expiry, testSecret)
	require.NoError(t, err)

	// Each token only parses under its own audience.
	_, err = ParseToken(accessToken, RefreshTokenAudienceName, testSecret)
	require.Error(t, err)
	_, err = ParseToken(refreshToken, AccessTokenAudienceName, testSecret)
	require.Error(t, err)

	_, err = ParseToken(refreshToken, RefreshTokenAudienceName, testSecret)
	require.NoError(t, err)
}

func TestTokenRejection(t *testing.T) {
	validExpiry := time.Now().Add(time.Hour)
	valid, err := GenerateAccessToken("fan@example.com", 1, validExpiry, testSecret)
	require.NoError(t, err)

	expired, err := GenerateAccessToken("fan@example.com", 1, time.Now().Add(-time.Minute), testSecret)
	require.NoError(t, err)

	// A token with the right shape but no kid header.
	noKid := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Email: "fan@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AccessTokenAudienceName},
			ExpiresAt: jwt.NewNumericDate(validExpiry),
			Subject:   "1",
		},
	})
	noKidToken, err := noKid.SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{"garbage", "not-a-token", testSecret},
		{"wrong secret", valid, []byte("other-secret")},
		{"expired", expired, testSecret},
		{"missing key id", noKidToken, testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, AccessTokenAudienceName, tt.secret)
			require.Error(t, err)
		})
	}
}

func TestClaimsUserID(t *testing.T) {
	claims := &ClaimsMessage{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}
	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int32(7), userID)

	claims = &ClaimsMessage{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-number"}}
	_, err = claims.UserID()
	require.Error(t, err)
}
