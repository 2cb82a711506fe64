package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"itumy-key-api/internal/model"
)

// MySQLStore implements UserKeyRepository and AdminRepository using MySQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a MySQL-backed store and ensures the schema exists.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS api_keys (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			api_key VARCHAR(128) NOT NULL UNIQUE,
			out_of_date DATETIME NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			api_key_id BIGINT NULL,
			last_login DATETIME NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_users_api_key_id (api_key_id)
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	log.Printf("[MySQLStore] Initialized")
	return &MySQLStore{db: db}, nil
}

// CreateUserWithKey atomically persists a new key and its owning user.
// The key row is inserted first so the user row can reference it.
func (r *MySQLStore) CreateUserWithKey(ctx context.Context, u model.User, k model.APIKey) (int64, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	keyRes, err := tx.ExecContext(ctx,
		`INSERT INTO api_keys (api_key, out_of_date, is_active) VALUES (?, ?, 1)`,
		k.Key, k.OutOfDate)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert api key: %w", err)
	}
	keyID, err := keyRes.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get key id: %w", err)
	}

	userRes, err := tx.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, api_key_id, last_login, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Email, keyID, u.LastLogin, u.CreatedAt)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert user: %w", err)
	}
	userID, err := userRes.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get user id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return userID, keyID, nil
}

// FindActiveKey looks up an active key by exact string, with its owner.
func (r *MySQLStore) FindActiveKey(ctx context.Context, key string) (*model.KeyValidation, error) {
	query := `
		SELECT a.id, a.api_key, a.out_of_date, a.is_active,
		       u.id, u.first_name, u.email
		FROM api_keys a
		LEFT JOIN users u ON u.api_key_id = a.id
		WHERE a.api_key = ? AND a.is_active = 1
		LIMIT 1`

	var (
		result    model.KeyValidation
		ownerID   sql.NullInt64
		ownerName sql.NullString
		ownerMail sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&result.KeyID,
		&result.Key,
		&result.OutOfDate,
		&result.IsActive,
		&ownerID,
		&ownerName,
		&ownerMail,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find key: %w", err)
	}

	if ownerID.Valid {
		result.Owner = &model.KeyOwner{
			ID:        ownerID.Int64,
			FirstName: ownerName.String,
			Email:     ownerMail.String,
		}
	}

	return &result, nil
}

// TouchLastLogin sets the user's last-activity timestamp.
func (r *MySQLStore) TouchLastLogin(ctx context.Context, userID int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeactivateExpiredKeys flips active keys past their expiry to inactive.
func (r *MySQLStore) DeactivateExpiredKeys(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET is_active = 0 WHERE out_of_date < ? AND is_active = 1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired keys: %w", err)
	}
	return res.RowsAffected()
}

// DeactivateInactiveKeys flips active keys whose owner has not been seen
// since cutoff (or ever). Keys without an owner are untouched.
func (r *MySQLStore) DeactivateInactiveKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE api_keys a
		JOIN users u ON u.api_key_id = a.id
		SET a.is_active = 0
		WHERE (u.last_login IS NULL OR u.last_login < ?)
		  AND a.is_active = 1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate inactive keys: %w", err)
	}
	return res.RowsAffected()
}

// ListUsersWithKeys returns every user with its key, newest users first.
func (r *MySQLStore) ListUsersWithKeys(ctx context.Context) ([]model.UserWithKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.last_login,
		       a.api_key, a.out_of_date, a.is_active
		FROM users u
		LEFT JOIN api_keys a ON u.api_key_id = a.id
		ORDER BY u.created_at DESC, u.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanUserKeyRows(rows)
}

// DeleteUser removes the user and deactivates its key in one transaction.
func (r *MySQLStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var keyID sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT api_key_id FROM users WHERE id = ?`, id).Scan(&keyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	if keyID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE api_keys SET is_active = 0 WHERE id = ?`, keyID.Int64); err != nil {
			return false, fmt.Errorf("failed to deactivate key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// Stats returns aggregate counts.
func (r *MySQLStore) Stats(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM api_keys WHERE is_active = 1),
			(SELECT COUNT(*) FROM api_keys WHERE is_active = 0),
			(SELECT COUNT(*) FROM admins)`).
		Scan(&s.TotalUsers, &s.ActiveKeys, &s.InactiveKeys, &s.TotalAdmins)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

// CreateAdmin persists a new admin, rejecting duplicate emails.
func (r *MySQLStore) CreateAdmin(ctx context.Context, email, passwordHash string, now time.Time) (int64, error) {
	var existing int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM admins WHERE email = ?`, email).Scan(&existing)
	if err == nil {
		return 0, ErrConflict
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to check admin email: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, now)
	if err != nil {
		// The unique index is the backstop for the check-then-insert race.
		return 0, fmt.Errorf("failed to insert admin: %w", err)
	}
	return res.LastInsertId()
}

// GetAdminByEmail returns the admin with the given email.
func (r *MySQLStore) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = ?`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

// Close closes the underlying connection pool.
func (r *MySQLStore) Close() error {
	return r.db.Close()
}

// Ensure MySQLStore implements the repository interfaces
var (
	_ UserKeyRepository = (*MySQLStore)(nil)
	_ AdminRepository   = (*MySQLStore)(nil)
)
