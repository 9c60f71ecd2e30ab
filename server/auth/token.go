// Package auth issues and validates the JWTs that guard the API, and
// resolves bearer headers back to store users.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

const (
	// Issuer is the registered claims issuer of every token.
	Issuer = "chatassist"
	// KeyID is the version of the currently used signing key.
	KeyID = "v1"
	// AccessTokenAudienceName is the audience of access tokens.
	AccessTokenAudienceName = "user.access-token"
	// RefreshTokenAudienceName is the audience of refresh tokens. Keeping
	// the audiences distinct stops a refresh token from passing as an
	// access token and vice versa.
	RefreshTokenAudienceName = "user.refresh-token"
)

// ClaimsMessage is the custom claims object embedded in every token.
type ClaimsMessage struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into the user ID.
func (c *ClaimsMessage) UserID() (int32, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "malformed token subject")
	}
	return int32(id), nil
}

// GenerateAccessToken generates an access token for the user.
func GenerateAccessToken(email string, userID int32, expirationTime time.Time, secret []byte) (string, error) {
	return generateToken(email, userID, AccessTokenAudienceName, expirationTime, secret)
}

// GenerateRefreshToken generates a refresh token for the user. Each token
// carries a fresh JTI so rotated tokens are distinguishable in logs.
func GenerateRefreshToken(email string, userID int32, expirationTime time.Time, secret []byte) (string, error) {
	return generateToken(email, userID, RefreshTokenAudienceName, expirationTime, secret)
}

func generateToken(email string, userID int32, audience string, expirationTime time.Time, secret []byte) (string, error) {
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{audience},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Subject:  fmt.Sprint(userID),
		ID:       shortuuid.New(),
	}
	if !expirationTime.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Email:            email,
		RegisteredClaims: registeredClaims,
	})
	token.Header["kid"] = KeyID

	return token.SignedString(secret)
}

// ParseToken validates the token signature and checks it was minted for the
// given audience.
func ParseToken(tokenString, audience string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.Errorf("unexpected key id: %v", t.Header["kid"])
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(audience))
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}
	return claims, nil
}
