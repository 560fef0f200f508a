package validation

import (
	"fmt"
	"regexp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateUsername checks username format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks basic email shape. Deliverability is not verified.
func ValidateEmail(email string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
