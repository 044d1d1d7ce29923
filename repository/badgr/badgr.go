// Package badgr is an adapter for the badgerDB
package badgr

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/sethvargo/go-retry"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
)

var (
	_ repository.Profile = new(Store)
	_ repository.Token   = new(Store)
)

const (
	profilePrefix = "profile:"
	tokenPrefix   = "token:"
)

// Store keeps profiles and login tokens in a single badger database.
type Store struct {
	db      *badger.DB
	backoff func() retry.Backoff
}

func New(db *badger.DB) *Store {
	return &Store{
		db: db,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(10, retry.NewExponential(time.Millisecond))
		},
	}
}

// Open opens (and creates if missing) the badger database at path.
func Open(path string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(path))
}

// update runs fn in a read-write transaction, retrying commits that lost
// a conflict against a concurrent transaction.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func get[T any](txn *badger.Txn, key string) (*T, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v T
	err = item.Value(func(b []byte) error {
		return json.Unmarshal(b, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func set(txn *badger.Txn, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.SetEntry(badger.NewEntry([]byte(key), b))
}

// GetByUUID implements repository.Profile.
func (s *Store) GetByUUID(_ context.Context, playerUUID string) (*login.Profile, error) {
	var p *login.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = get[login.Profile](txn, profilePrefix+playerUUID)
		return err
	})
	return p, err
}

// Create implements repository.Profile.
func (s *Store) Create(ctx context.Context, profile login.Profile) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := get[login.Profile](txn, profilePrefix+profile.PlayerUUID)
		if err == nil {
			return repository.ErrDuplicate
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if profile.CreatedAt.IsZero() {
			profile.CreatedAt = profile.LastLogin
		}
		return set(txn, profilePrefix+profile.PlayerUUID, profile)
	})
}

// Update implements repository.Profile.
func (s *Store) Update(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		p, err := get[login.Profile](txn, profilePrefix+playerUUID)
		if err != nil {
			return err
		}
		p.PlayerName = playerName
		p.LastLogin = lastLogin
		return set(txn, profilePrefix+playerUUID, p)
	})
}

// Touch implements repository.Profile.
func (s *Store) Touch(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) (bool, error) {
	err := s.Update(ctx, playerUUID, playerName, lastLogin)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Insert implements repository.Token.
func (s *Store) Insert(ctx context.Context, token login.Token) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := get[login.Token](txn, tokenPrefix+token.Token)
		if err == nil {
			return repository.ErrDuplicate
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		token.Used = false
		if token.CreatedAt.IsZero() {
			token.CreatedAt = time.Now()
		}
		return set(txn, tokenPrefix+token.Token, token)
	})
}

// Get implements repository.Token.
func (s *Store) Get(_ context.Context, token string) (*login.Token, error) {
	var t *login.Token
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		t, err = get[login.Token](txn, tokenPrefix+token)
		return err
	})
	return t, err
}

// Consume implements repository.Token.
// Two transactions that both read the row unused cannot both commit: the
// later one gets badger.ErrConflict, is retried, and then reads used == true.
func (s *Store) Consume(ctx context.Context, token string, now time.Time) (login.Identity, bool, error) {
	var (
		id login.Identity
		ok bool
	)
	err := s.update(ctx, func(txn *badger.Txn) error {
		ok = false
		t, err := get[login.Token](txn, tokenPrefix+token)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !t.Redeemable(now) {
			return nil
		}
		t.Used = true
		if err = set(txn, tokenPrefix+token, t); err != nil {
			return err
		}
		id, ok = t.Identity(), true
		return nil
	})
	if err != nil {
		return login.Identity{}, false, err
	}
	if !ok {
		return login.Identity{}, false, nil
	}
	return id, true, nil
}
