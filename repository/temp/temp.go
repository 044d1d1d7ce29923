// Package temp is an in-memory store for local runs and tests.
// Its contents are lost when the process exits.
package temp

import (
	"context"
	"sync"
	"time"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
)

var (
	_ repository.Profile  = new(Store)
	_ repository.Token    = new(Store)
	_ repository.Cooldown = new(Cooldown)
)

type Store struct {
	mu       sync.Mutex // protects profiles and tokens
	profiles map[string]login.Profile
	tokens   map[string]login.Token
	nextID   int64
}

func New() *Store {
	return &Store{
		profiles: make(map[string]login.Profile),
		tokens:   make(map[string]login.Token),
	}
}

// GetByUUID implements repository.Profile.
func (s *Store) GetByUUID(_ context.Context, playerUUID string) (*login.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[playerUUID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// Create implements repository.Profile.
func (s *Store) Create(_ context.Context, profile login.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.PlayerUUID]; ok {
		return repository.ErrDuplicate
	}
	s.nextID++
	profile.ID = s.nextID
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.LastLogin
	}
	s.profiles[profile.PlayerUUID] = profile
	return nil
}

// Update implements repository.Profile.
func (s *Store) Update(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) error {
	ok, err := s.Touch(ctx, playerUUID, playerName, lastLogin)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Touch implements repository.Profile.
func (s *Store) Touch(_ context.Context, playerUUID, playerName string, lastLogin time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[playerUUID]
	if !ok {
		return false, nil
	}
	p.PlayerName = playerName
	p.LastLogin = lastLogin
	s.profiles[playerUUID] = p
	return true, nil
}

// Insert implements repository.Token.
func (s *Store) Insert(_ context.Context, token login.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.Token]; ok {
		return repository.ErrDuplicate
	}
	token.Used = false
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	s.tokens[token.Token] = token
	return nil
}

// Get implements repository.Token.
func (s *Store) Get(_ context.Context, token string) (*login.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// Consume implements repository.Token.
func (s *Store) Consume(_ context.Context, token string, now time.Time) (login.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || !t.Redeemable(now) {
		return login.Identity{}, false, nil
	}
	t.Used = true
	s.tokens[token] = t
	return t.Identity(), true, nil
}

// Profiles returns the number of stored profiles
func (s *Store) Profiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

// Tokens returns the number of stored tokens
func (s *Store) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Cooldown is an in-memory repository.Cooldown.
type Cooldown struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{until: make(map[string]time.Time), now: time.Now}
}

// Acquire implements repository.Cooldown.
func (c *Cooldown) Acquire(_ context.Context, playerUUID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if until, ok := c.until[playerUUID]; ok && now.Before(until) {
		return false, nil
	}
	c.until[playerUUID] = now.Add(ttl)
	return true, nil
}

// Release implements repository.Cooldown.
func (c *Cooldown) Release(_ context.Context, playerUUID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.until, playerUUID)
	return nil
}
