package models

import "time"

// User is a registered account as persisted by the user stores.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"passwordHash"`
	Newsletter   bool       `json:"newsletter"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin"`
	Active       bool       `json:"active"`
}

// Profile is the public part of a user, safe to return to clients and to
// embed in sessions.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Newsletter  bool      `json:"newsletter"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Newsletter:  u.Newsletter,
		CreatedAt:   u.CreatedAt,
	}
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Newsletter  bool   `json:"newsletter"`
	AcceptTerms bool   `json:"acceptTerms"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}
