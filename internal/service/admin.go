package service

import (
	"context"
	"errors"
	"log"
	"time"

	"itumy-key-api/internal/model"
	"itumy-key-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Login failures. Both map to the same response class for callers; the
// messages differ internally only.
var (
	ErrEmailNotFound = errors.New("email not registered")
	ErrWrongPassword = errors.New("wrong password")
)

// AdminService handles admin registration and login.
type AdminService struct {
	repo     repository.AdminRepository
	sessions *SessionService
	now      func() time.Time
}

// NewAdminService creates an admin service.
func NewAdminService(repo repository.AdminRepository, sessions *SessionService, now func() time.Time) *AdminService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AdminService{
		repo:     repo,
		sessions: sessions,
		now:      now,
	}
}

// Register creates a new admin. The password is bcrypt-hashed before it
// is persisted; the plaintext is never stored or logged. Returns
// repository.ErrConflict when the email is already registered.
func (s *AdminService) Register(ctx context.Context, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateAdmin(ctx, email, string(hash), s.now())
	if err != nil {
		return 0, err
	}

	log.Printf("[AdminService] Registered admin id=%d", id)
	return id, nil
}

// Login checks the credentials and, on success, mints a session token.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrEmailNotFound
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrWrongPassword
	}

	return s.sessions.Generate(model.AdminClaims{
		ID:    admin.ID,
		Email: admin.Email,
	})
}
