package auth

import (
	"context"
	"strings"

	"github.com/chatassist/chatassist/store"
)

// Result is the outcome of a successful authentication.
type Result struct {
	User        *store.User
	Claims      *ClaimsMessage
	AccessToken string
}

// Authenticator resolves Authorization headers to store users.
type Authenticator struct {
	store  *store.Store
	secret string
}

// NewAuthenticator creates an authenticator bound to the signing secret.
func NewAuthenticator(store *store.Store, secret string) *Authenticator {
	return &Authenticator{
		store:  store,
		secret: secret,
	}
}

// Authenticate validates a bearer Authorization header. It returns nil when
// the header is missing, malformed, expired, or names a user that no longer
// exists. Callers decide whether nil means 401.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) *Result {
	token, ok := extractBearerToken(authHeader)
	if !ok {
		return nil
	}

	claims, err := ParseToken(token, AccessTokenAudienceName, []byte(a.secret))
	if err != nil {
		return nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil
	}

	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil || user == nil {
		return nil
	}

	return &Result{
		User:        user,
		Claims:      claims,
		AccessToken: token,
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
