// Package random generates the unguessable values used as login tokens
package random

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLifetime is how long a freshly minted login link stays valid
const DefaultLifetime = 5 * time.Minute

// Token returns a new random (version 4) UUID string. The randomness comes
// from crypto/rand, so the value is safe to use as a bearer credential.
func Token() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ExpiresAt returns the epoch second a token minted at now with lifetime ttl expires.
func ExpiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		ttl = DefaultLifetime
	}
	return now.Add(ttl).Unix()
}
