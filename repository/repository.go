// Package repository is responsible for the permanent storage of data of this application
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kodekulture/tokenlink/login"
)

var (
	// ErrNotFound is returned when no record matches the lookup key
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key
	ErrDuplicate = errors.New("record already exists")
)

type Profile interface {
	// GetByUUID returns the profile of the player with the given uuid
	GetByUUID(ctx context.Context, playerUUID string) (*login.Profile, error)

	// Create saves a new profile. It returns ErrDuplicate if the player already has one.
	Create(ctx context.Context, profile login.Profile) error

	// Update resyncs the player name and last login of an existing profile
	Update(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) error

	// Touch is Update that tolerates a missing profile.
	// It reports whether a profile was updated.
	Touch(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) (bool, error)
}

type Token interface {
	// Insert saves a new unused token. It returns ErrDuplicate if the token value is taken.
	Insert(ctx context.Context, token login.Token) error

	// Get returns the token row with an exact match on the token value
	Get(ctx context.Context, token string) (*login.Token, error)

	// Consume atomically flips an unused, unexpired token to used.
	// Only one caller ever observes ok == true for a given token.
	Consume(ctx context.Context, token string, now time.Time) (id login.Identity, ok bool, err error)
}

type Cooldown interface {
	// Acquire starts a cooldown window for the player.
	// It returns false if a window is already running.
	Acquire(ctx context.Context, playerUUID string, ttl time.Duration) (bool, error)

	// Release ends the player's cooldown window early.
	Release(ctx context.Context, playerUUID string) error
}
