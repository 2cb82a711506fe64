package model

import "time"

// Admin is an administrative identity, authenticated separately from
// end-users. Created once via self-registration, never mutated.
type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminClaims is the identity carried by a verified session token.
type AdminClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
