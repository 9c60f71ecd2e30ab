// Package util provides small shared helpers.
package util

import (
	"net/mail"

	"github.com/google/uuid"
)

// ValidateEmail validates the email.
func ValidateEmail(email string) bool {
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}
	return true
}

// ValidateUUID reports whether s is a well-formed UUID.
func ValidateUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// GenUUID generates a new random UUID string.
func GenUUID() string {
	return uuid.New().String()
}
