package postgres

import (
	"context"
	"time"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
	"github.com/kodekulture/tokenlink/repository/postgres/pgen"
)

var _ repository.Profile = new(ProfileRepo)

type ProfileRepo struct {
	*pgen.Queries
}

func NewProfileRepo(db pgen.DBTX) *ProfileRepo {
	return &ProfileRepo{
		pgen.New(db),
	}
}

// GetByUUID implements repository.Profile.
func (r *ProfileRepo) GetByUUID(ctx context.Context, playerUUID string) (*login.Profile, error) {
	p, err := r.FetchProfileByUUID(ctx, playerUUID)
	if err != nil {
		return nil, mapErr(err, "fetch profile")
	}
	return &login.Profile{
		ID:         p.ID,
		PlayerUUID: p.PlayerUuid,
		PlayerName: p.PlayerName,
		CreatedAt:  p.CreatedAt.Time,
		LastLogin:  p.LastLogin.Time,
	}, nil
}

// Create implements repository.Profile.
func (r *ProfileRepo) Create(ctx context.Context, profile login.Profile) error {
	err := r.CreateProfile(ctx, pgen.CreateProfileParams{
		PlayerUuid: profile.PlayerUUID,
		PlayerName: profile.PlayerName,
		LastLogin:  toTimestamptz(profile.LastLogin),
	})
	return mapErr(err, "create profile")
}

// Update implements repository.Profile.
func (r *ProfileRepo) Update(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) error {
	ok, err := r.Touch(ctx, playerUUID, playerName, lastLogin)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Touch implements repository.Profile.
func (r *ProfileRepo) Touch(ctx context.Context, playerUUID, playerName string, lastLogin time.Time) (bool, error) {
	n, err := r.UpdateProfileLogin(ctx, pgen.UpdateProfileLoginParams{
		PlayerUuid: playerUUID,
		PlayerName: playerName,
		LastLogin:  toTimestamptz(lastLogin),
	})
	if err != nil {
		return false, mapErr(err, "update profile")
	}
	return n > 0, nil
}
