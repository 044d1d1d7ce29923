package service

import (
	"time"

	"github.com/kodekulture/tokenlink/repository"
)

// Service issues and redeems login tokens. It holds no state between
// requests, every invariant is enforced by the store.
type Service struct {
	pr repository.Profile
	tr repository.Token

	cooldown    repository.Cooldown
	cooldownTTL time.Duration
	now         func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCooldown limits issuance to one token per player per ttl.
// A zero ttl or nil store disables the limit.
func WithCooldown(store repository.Cooldown, ttl time.Duration) Option {
	return func(s *Service) {
		s.cooldown = store
		s.cooldownTTL = ttl
	}
}

func New(pr repository.Profile, tr repository.Token, opts ...Option) *Service {
	s := &Service{
		pr:  pr,
		tr:  tr,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
