package auth

import (
	"regexp"
	"unicode/utf8"

	"github.com/ayush/sports-events-hub/internal/models"
)

const minPasswordLen = 6

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidUsername reports whether name has the allowed shape.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// validateFields checks the rules that need no storage lookup, in order.
func validateFields(req models.RegisterRequest) error {
	if !ValidUsername(req.Username) {
		return invalid(BadUsername, "Username must be 3-20 characters and contain only letters, numbers, and underscores")
	}
	if !emailPattern.MatchString(req.Email) {
		return invalid(BadEmail, "Please enter a valid email address")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		return invalid(BadPassword, "Password must be at least 6 characters long")
	}
	if !req.AcceptTerms {
		return invalid(TermsNotAccepted, "You must accept the terms and conditions")
	}
	return nil
}
