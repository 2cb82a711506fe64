package model

import "time"

// User is an end-user identity. A user owns exactly one API key,
// referenced by APIKeyID. LastLogin is bumped on every successful key
// validation and is what feeds the inactivity rule.
type User struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	APIKeyID  int64      `json:"-"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserWithKey is a dashboard row: a user left-joined with its key.
// Key fields are nil when the user has no key.
type UserWithKey struct {
	UserID    int64      `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"last_login"`
	APIKey    *string    `json:"api_key"`
	OutOfDate *time.Time `json:"out_of_date"`
	IsActive  bool       `json:"is_active"`
	Status    string     `json:"status"`
}

// Dashboard status labels.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusNone     = "none" // user has no key at all
)
