package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatassist/chatassist/store"
	"github.com/chatassist/chatassist/store/test"
)

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	st, _ := test.NewTestingStore(t)
	authenticator := NewAuthenticator(st, "test-secret")

	user, err := st.CreateUser(ctx, &store.User{Email: "fan@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	accessToken, err := GenerateAccessToken(user.Email, user.ID, expiry, []byte("test-secret"))
	require.NoError(t, err)
	refreshToken, err := GenerateRefreshToken(user.Email, user.ID, expiry, []byte("test-secret"))
	require.NoError(t, err)
	deletedUserToken, err := GenerateAccessToken("ghost@example.com", 999, expiry, []byte("test-secret"))
	require.NoError(t, err)

	result := authenticator.Authenticate(ctx, "Bearer "+accessToken)
	require.NotNil(t, result)
	require.Equal(t, user.ID, result.User.ID)
	require.Equal(t, user.Email, result.User.Email)
	require.Equal(t, accessToken, result.AccessToken)
	require.NotNil(t, result.Claims)

	// The scheme check is case-insensitive, as headers in the wild vary.
	require.NotNil(t, authenticator.Authenticate(ctx, "bearer "+accessToken))

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"no scheme", accessToken},
		{"wrong scheme", "Basic " + accessToken},
		{"garbage token", "Bearer not-a-token"},
		{"refresh token", "Bearer " + refreshToken},
		{"user no longer exists", "Bearer " + deletedUserToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, authenticator.Authenticate(ctx, tt.header))
		})
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	require.Zero(t, GetUserID(ctx))
	require.Nil(t, GetUserClaims(ctx))

	ctx = SetUserIDInContext(ctx, 42)
	require.Equal(t, int32(42), GetUserID(ctx))

	claims := &ClaimsMessage{Email: "fan@example.com"}
	ctx = SetUserClaimsInContext(ctx, claims)
	require.Equal(t, claims, GetUserClaims(ctx))
}
