package service

import (
	"fmt"
	"time"

	"itumy-key-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService mints and verifies admin session tokens: HS256 JWTs
// carrying the admin id and email, valid for a configured lifetime.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a session service. The signing secret is
// injected, never read from ambient state; nil now means UTC wall clock.
func NewSessionService(secret []byte, ttl time.Duration, now func() time.Time) *SessionService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SessionService{
		secret: secret,
		ttl:    ttl,
		now:    now,
	}
}

// Generate mints a signed session token for the given admin.
func (s *SessionService) Generate(admin model.AdminClaims) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"id":    admin.ID,
		"email": admin.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a session token and returns the admin identity it
// carries. Any signature, format or expiry problem is an error.
func (s *SessionService) Verify(tokenStr string) (*model.AdminClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	// Numeric claims decode as float64.
	id, ok := claims["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	email, _ := claims["email"].(string)

	return &model.AdminClaims{
		ID:    int64(id),
		Email: email,
	}, nil
}
