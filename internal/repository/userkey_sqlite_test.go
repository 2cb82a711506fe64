package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"itumy-key-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func seedUser(t *testing.T, store *SQLiteStore, key, email string, createdAt time.Time) (int64, int64) {
	t.Helper()

	userID, keyID, err := store.CreateUserWithKey(context.Background(),
		model.User{
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     email,
			LastLogin: &createdAt,
			CreatedAt: createdAt,
		},
		model.APIKey{
			Key:       key,
			OutOfDate: createdAt.AddDate(0, 0, 30),
			IsActive:  true,
		})
	require.NoError(t, err)

	return userID, keyID
}

func TestCreateUserWithKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	userID, keyID := seedUser(t, store, "sk-itumy-v1-1_abc", "ann@x.com", now)
	assert.Greater(t, userID, int64(0))
	assert.Greater(t, keyID, int64(0))

	result, err := store.FindActiveKey(ctx, "sk-itumy-v1-1_abc")
	require.NoError(t, err)
	assert.Equal(t, keyID, result.KeyID)
	assert.True(t, result.IsActive)
	assert.WithinDuration(t, now.AddDate(0, 0, 30), result.OutOfDate, time.Second)

	require.NotNil(t, result.Owner)
	assert.Equal(t, userID, result.Owner.ID)
	assert.Equal(t, "Ann", result.Owner.FirstName)
	assert.Equal(t, "ann@x.com", result.Owner.Email)
}

func TestFindActiveKey_MissingAndInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	_, err := store.FindActiveKey(ctx, "sk-itumy-v1-nope")
	assert.ErrorIs(t, err, ErrNotFound)

	seedUser(t, store, "sk-itumy-v1-2_abc", "b@x.com", now)
	_, err = store.db.Exec(`UPDATE api_keys SET is_active = 0 WHERE api_key = ?`, "sk-itumy-v1-2_abc")
	require.NoError(t, err)

	// An inactive key is indistinguishable from a missing one.
	_, err = store.FindActiveKey(ctx, "sk-itumy-v1-2_abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	userID, _ := seedUser(t, store, "sk-itumy-v1-3_abc", "c@x.com", created)

	later := created.Add(48 * time.Hour)
	require.NoError(t, store.TouchLastLogin(ctx, userID, later))

	rows, err := store.ListUsersWithKeys(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].LastLogin)
	assert.WithinDuration(t, later, *rows[0].LastLogin, time.Second)
}

func TestDeactivateExpiredKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "sk-itumy-v1-4_abc", "d@x.com", created)

	// Not yet expired
	n, err := store.DeactivateExpiredKeys(ctx, created.AddDate(0, 0, 29))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Past expiry
	n, err = store.DeactivateExpiredKeys(ctx, created.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Idempotent
	n, err = store.DeactivateExpiredKeys(ctx, created.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDeactivateInactiveKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "sk-itumy-v1-5_abc", "e@x.com", created)

	// Owner active after the cutoff: untouched.
	n, err := store.DeactivateInactiveKeys(ctx, created.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Owner idle since before the cutoff: deactivated.
	n, err = store.DeactivateInactiveKeys(ctx, created.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeactivateInactiveKeys_NullLastLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "sk-itumy-v1-6_abc", "f@x.com", created)
	_, err := store.db.Exec(`UPDATE users SET last_login = NULL`)
	require.NoError(t, err)

	n, err := store.DeactivateInactiveKeys(ctx, created.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeactivateInactiveKeys_OrphanUntouched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A key with no owning user has no last-activity to evaluate.
	_, err := store.db.Exec(
		`INSERT INTO api_keys (api_key, out_of_date, is_active) VALUES (?, ?, 1)`,
		"sk-itumy-v1-orphan", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	n, err := store.DeactivateInactiveKeys(ctx, time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	result, err := store.FindActiveKey(ctx, "sk-itumy-v1-orphan")
	require.NoError(t, err)
	assert.True(t, result.IsActive)
	assert.Nil(t, result.Owner)
}

func TestListUsersWithKeys_Ordering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "sk-itumy-v1-a", "a@x.com", base)
	seedUser(t, store, "sk-itumy-v1-b", "b@x.com", base.Add(time.Hour))
	seedUser(t, store, "sk-itumy-v1-c", "c@x.com", base.Add(2*time.Hour))

	rows, err := store.ListUsersWithKeys(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Most recently created first
	assert.Equal(t, "c@x.com", rows[0].Email)
	assert.Equal(t, "b@x.com", rows[1].Email)
	assert.Equal(t, "a@x.com", rows[2].Email)
}

func TestDeleteUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	userID, _ := seedUser(t, store, "sk-itumy-v1-7_abc", "g@x.com", created)

	deleted, err := store.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// The key is deactivated, never deleted.
	_, err = store.FindActiveKey(ctx, "sk-itumy-v1-7_abc")
	assert.ErrorIs(t, err, ErrNotFound)

	var isActive bool
	require.NoError(t, store.db.QueryRow(
		`SELECT is_active FROM api_keys WHERE api_key = ?`, "sk-itumy-v1-7_abc").Scan(&isActive))
	assert.False(t, isActive)

	// Deleting again reports not found.
	deleted, err = store.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCreateAdmin_Conflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	id, err := store.CreateAdmin(ctx, "admin@x.com", "hash", now)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = store.CreateAdmin(ctx, "admin@x.com", "hash2", now)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetAdminByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	_, err := store.GetAdminByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := store.CreateAdmin(ctx, "admin@x.com", "hash", now)
	require.NoError(t, err)

	admin, err := store.GetAdminByEmail(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, "admin@x.com", admin.Email)
	assert.Equal(t, "hash", admin.PasswordHash)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "sk-itumy-v1-s1", "s1@x.com", now)
	userID, _ := seedUser(t, store, "sk-itumy-v1-s2", "s2@x.com", now)
	_, err := store.CreateAdmin(ctx, "admin@x.com", "hash", now)
	require.NoError(t, err)

	_, err = store.DeleteUser(ctx, userID)
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveKeys)
	assert.Equal(t, int64(1), stats.InactiveKeys)
	assert.Equal(t, int64(1), stats.TotalAdmins)
}
