package repository

import (
	"context"
	"errors"
	"time"

	"itumy-key-api/internal/model"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound indicates the requested row does not exist. For key
	// lookups this also covers keys that exist but are inactive: the two
	// cases are indistinguishable to callers on purpose.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate admin email).
	ErrConflict = errors.New("conflict")
)

// UserKeyRepository owns users and their API keys.
type UserKeyRepository interface {
	// CreateUserWithKey atomically persists a new key and the user that
	// references it. Both rows commit together or neither does.
	CreateUserWithKey(ctx context.Context, u model.User, k model.APIKey) (userID, keyID int64, err error)

	// FindActiveKey looks up a key by exact string match where the key is
	// still active, left-joined with its owner. Returns ErrNotFound when
	// the key is missing or inactive.
	FindActiveKey(ctx context.Context, key string) (*model.KeyValidation, error)

	// TouchLastLogin sets the user's last-activity timestamp.
	TouchLastLogin(ctx context.Context, userID int64, now time.Time) error

	// DeactivateExpiredKeys flips every active key with out_of_date < now
	// to inactive. Returns the number of keys deactivated. Idempotent.
	DeactivateExpiredKeys(ctx context.Context, now time.Time) (int64, error)

	// DeactivateInactiveKeys flips every active key whose owner has a null
	// last_login or one older than cutoff. Keys without an owner are left
	// alone. Returns the number of keys deactivated. Idempotent.
	DeactivateInactiveKeys(ctx context.Context, cutoff time.Time) (int64, error)

	// ListUsersWithKeys returns every user left-joined with its key,
	// most recently created first.
	ListUsersWithKeys(ctx context.Context) ([]model.UserWithKey, error)

	// DeleteUser removes the user row and deactivates its key in one
	// transaction. Reports false when the user does not exist.
	DeleteUser(ctx context.Context, id int64) (bool, error)

	// Stats returns aggregate counts for the stats endpoint.
	Stats(ctx context.Context) (*model.Stats, error)

	// Close closes the repository connection.
	Close() error
}

// AdminRepository owns admin identities.
type AdminRepository interface {
	// CreateAdmin persists a new admin. Returns ErrConflict when the email
	// is already registered.
	CreateAdmin(ctx context.Context, email, passwordHash string, now time.Time) (int64, error)

	// GetAdminByEmail returns the admin with the given email, or ErrNotFound.
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
}
