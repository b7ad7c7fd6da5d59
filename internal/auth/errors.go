package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrNoToken         = errors.New("no session token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// ValidationKind names the registration rule that was violated.
type ValidationKind string

const (
	BadUsername      ValidationKind = "bad_username"
	BadEmail         ValidationKind = "bad_email"
	BadPassword      ValidationKind = "bad_password"
	TermsNotAccepted ValidationKind = "terms_not_accepted"
	UsernameTaken    ValidationKind = "username_taken"
	EmailTaken       ValidationKind = "email_taken"
)

// ValidationError reports the first registration rule a request broke.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind ValidationKind, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Message: msg}
}
