package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Prefix identifies the key scheme and version.
const Prefix = "sk-itumy-v1-"

// randomBytes is the entropy of the key suffix (256 bits).
const randomBytes = 32

// New generates an API key string: the scheme prefix, the creation
// timestamp in unix milliseconds, and a base64url-encoded random suffix.
// Uniqueness is probabilistic; the store's unique index is the backstop.
func New(now time.Time) (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	random := base64.RawURLEncoding.EncodeToString(buf)
	return fmt.Sprintf("%s%d_%s", Prefix, now.UnixMilli(), random), nil
}

// HasPrefix reports whether s looks like a key issued by this service.
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, Prefix)
}
