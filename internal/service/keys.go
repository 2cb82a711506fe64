package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"itumy-key-api/internal/config"
	"itumy-key-api/internal/model"
	"itumy-key-api/internal/repository"
	"itumy-key-api/pkg/keygen"
)

// KeyService owns the API key lifecycle: issuing, validation, the two
// deactivation rules, the dashboard listing and user deletion.
type KeyService struct {
	repo repository.UserKeyRepository
	cfg  config.KeysConfig
	now  func() time.Time
}

// NewKeyService creates a key service. now is the clock used for every
// time-dependent decision; nil means UTC wall clock.
func NewKeyService(repo repository.UserKeyRepository, cfg config.KeysConfig, now func() time.Time) *KeyService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &KeyService{
		repo: repo,
		cfg:  cfg,
		now:  now,
	}
}

// CreateUser registers a user and issues its API key in one transaction.
// The key starts active with expiry now + TTL days; the user's last
// activity is set to the creation instant.
func (s *KeyService) CreateUser(ctx context.Context, firstName, lastName, email string) (*model.CreatedUser, error) {
	now := s.now()

	apiKey, err := keygen.New(now)
	if err != nil {
		return nil, err
	}

	key := model.APIKey{
		Key:       apiKey,
		OutOfDate: AddDays(now, s.cfg.TTLDays),
		IsActive:  true,
	}
	user := model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		LastLogin: &now,
		CreatedAt: now,
	}

	userID, _, err := s.repo.CreateUserWithKey(ctx, user, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create user with key: %w", err)
	}

	log.Printf("[KeyService] Issued key for user id=%d, expires=%v", userID, key.OutOfDate)

	return &model.CreatedUser{
		UserID:    userID,
		APIKey:    apiKey,
		OutOfDate: key.OutOfDate,
	}, nil
}

// Validate is the request-time hot path: looks up the presented key,
// records usage on the owner, and returns the verdict. A key that is
// inactive or unknown both surface as repository.ErrNotFound — callers
// cannot tell the two apart. This path never writes the liveness flag.
func (s *KeyService) Validate(ctx context.Context, apiKey string) (*model.KeyValidation, error) {
	result, err := s.repo.FindActiveKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	// Orphaned keys (no owning user) skip the usage side effect but are
	// still reported valid.
	if result.Owner != nil {
		if err := s.repo.TouchLastLogin(ctx, result.Owner.ID, s.now()); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ApplyDeactivationRules runs the two lazy sweeps at now: rule E flips
// keys past their expiry, rule I flips keys whose owner has been idle
// longer than the inactivity window (or has never been seen). Both are
// idempotent and order-independent.
func (s *KeyService) ApplyDeactivationRules(ctx context.Context, now time.Time) error {
	expired, err := s.repo.DeactivateExpiredKeys(ctx, now)
	if err != nil {
		return fmt.Errorf("expiry sweep failed: %w", err)
	}

	idle, err := s.repo.DeactivateInactiveKeys(ctx, InactivityCutoff(now, s.cfg.InactivityDays))
	if err != nil {
		return fmt.Errorf("inactivity sweep failed: %w", err)
	}

	if expired > 0 || idle > 0 {
		log.Printf("[KeyService] Deactivated keys: %d expired, %d inactive owners", expired, idle)
	}
	return nil
}

// Dashboard applies the deactivation rules, then returns every user with
// its key and a derived status label. The sweep is a precondition of the
// read, not a separate scheduled process.
func (s *KeyService) Dashboard(ctx context.Context) ([]model.UserWithKey, error) {
	if err := s.ApplyDeactivationRules(ctx, s.now()); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListUsersWithKeys(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		switch {
		case rows[i].APIKey == nil:
			rows[i].Status = model.StatusNone
		case rows[i].IsActive:
			rows[i].Status = model.StatusActive
		default:
			rows[i].Status = model.StatusInactive
		}
	}
	return rows, nil
}

// DeleteUser removes a user; its key is deactivated, never reactivated.
// Reports false when no such user exists.
func (s *KeyService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.repo.DeleteUser(ctx, id)
}
