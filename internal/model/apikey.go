package model

import "time"

// APIKey is an issued key. IsActive is monotonic: set true at creation,
// only ever flipped to false (expiry sweep, inactivity sweep, or owner
// deletion), never back.
type APIKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"api_key"`
	OutOfDate time.Time `json:"out_of_date"`
	IsActive  bool      `json:"is_active"`
}

// Expired reports whether the key's validity window has passed at now.
func (k *APIKey) Expired(now time.Time) bool {
	return k.OutOfDate.Before(now)
}

// KeyOwner is the owning user summary returned on validation.
type KeyOwner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// KeyValidation is the verdict for a presented key that was found active.
// Owner is nil for an orphaned key.
type KeyValidation struct {
	KeyID     int64
	Key       string
	OutOfDate time.Time
	IsActive  bool
	Owner     *KeyOwner
}

// CreatedUser is the result of registering a user with a freshly issued key.
type CreatedUser struct {
	UserID    int64     `json:"userId"`
	APIKey    string    `json:"apiKey"`
	OutOfDate time.Time `json:"out_of_date"`
}
