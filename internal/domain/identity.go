package domain

import (
	"time"
)

// Identity represents a registered user. The username is immutable once
// created and the password is only ever held as a one-way hash.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionToken is the signed, time-bounded assertion returned at sign-in.
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
