package auth

import (
	"context"
)

type contextKey int

const (
	// UserIDContextKey carries the authenticated user's ID.
	UserIDContextKey contextKey = iota
	// ClaimsContextKey carries the validated access token claims.
	ClaimsContextKey
)

// SetUserIDInContext stores the authenticated user ID in the context.
func SetUserIDInContext(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserID returns the authenticated user ID, or 0 when unauthenticated.
func GetUserID(ctx context.Context) int32 {
	if userID, ok := ctx.Value(UserIDContextKey).(int32); ok {
		return userID
	}
	return 0
}

// SetUserClaimsInContext stores validated claims in the context.
func SetUserClaimsInContext(ctx context.Context, claims *ClaimsMessage) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetUserClaims returns the validated claims, or nil when unauthenticated.
func GetUserClaims(ctx context.Context) *ClaimsMessage {
	if claims, ok := ctx.Value(ClaimsContextKey).(*ClaimsMessage); ok {
		return claims
	}
	return nil
}
