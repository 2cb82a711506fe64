package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"itumy-key-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements UserKeyRepository and AdminRepository using SQLite.
// Serialized writes; fine for single-instance deployments and tests.
//
// All timestamps must be UTC: SQLite stores them as text, and text
// comparison is only chronological when every value carries the same offset.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database file and ensures the
// schema exists. dbPath is the path to the SQLite database file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS api_keys (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		api_key TEXT NOT NULL UNIQUE,
		out_of_date DATETIME NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		api_key_id INTEGER,
		last_login DATETIME,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_api_key_id ON users(api_key_id);
	CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

// CreateUserWithKey atomically persists a new key and its owning user.
func (r *SQLiteStore) CreateUserWithKey(ctx context.Context, u model.User, k model.APIKey) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteStore) FindActiveKey(ctx context.Context, key string) (*model.KeyValidation, error) {
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
func (r *SQLiteStore) TouchLastLogin(ctx context.Context, userID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeactivateExpiredKeys flips active keys past their expiry to inactive.
func (r *SQLiteStore) DeactivateExpiredKeys(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET is_active = 0 WHERE out_of_date < ? AND is_active = 1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired keys: %w", err)
	}
	return res.RowsAffected()
}

// DeactivateInactiveKeys flips active keys whose owner has not been seen
// since cutoff (or ever). SQLite has no UPDATE..JOIN, hence the subquery.
func (r *SQLiteStore) DeactivateInactiveKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET is_active = 0
		WHERE is_active = 1
		  AND id IN (
			SELECT api_key_id FROM users
			WHERE api_key_id IS NOT NULL
			  AND (last_login IS NULL OR last_login < ?)
		  )`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate inactive keys: %w", err)
	}
	return res.RowsAffected()
}

// ListUsersWithKeys returns every user with its key, newest users first.
func (r *SQLiteStore) ListUsersWithKeys(ctx context.Context) ([]model.UserWithKey, error) {
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
func (r *SQLiteStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
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
func (r *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
		return 0, fmt.Errorf("failed to insert admin: %w", err)
	}
	return res.LastInsertId()
}

// GetAdminByEmail returns the admin with the given email.
func (r *SQLiteStore) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
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

// Close closes the underlying connection.
func (r *SQLiteStore) Close() error {
	return r.db.Close()
}

// Ensure SQLiteStore implements the repository interfaces
var (
	_ UserKeyRepository = (*SQLiteStore)(nil)
	_ AdminRepository   = (*SQLiteStore)(nil)
)
