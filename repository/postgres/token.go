package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
	"github.com/kodekulture/tokenlink/repository/postgres/pgen"
)

var _ repository.Token = new(TokenRepo)

type TokenRepo struct {
	*pgen.Queries
}

func NewTokenRepo(db pgen.DBTX) *TokenRepo {
	return &TokenRepo{
		pgen.New(db),
	}
}

// Insert implements repository.Token.
func (r *TokenRepo) Insert(ctx context.Context, token login.Token) error {
	err := r.InsertLoginToken(ctx, pgen.InsertLoginTokenParams{
		Token:      token.Token,
		PlayerUuid: token.PlayerUUID,
		PlayerName: token.PlayerName,
		ExpiresAt:  token.ExpiresAt,
	})
	return mapErr(err, "insert token")
}

// Get implements repository.Token.
func (r *TokenRepo) Get(ctx context.Context, token string) (*login.Token, error) {
	t, err := r.FetchLoginToken(ctx, token)
	if err != nil {
		return nil, mapErr(err, "fetch token")
	}
	return &login.Token{
		Token:      t.Token,
		PlayerUUID: t.PlayerUuid,
		PlayerName: t.PlayerName,
		ExpiresAt:  t.ExpiresAt,
		Used:       t.Used,
		CreatedAt:  t.CreatedAt.Time,
	}, nil
}

// Consume implements repository.Token.
// The row is only returned by the UPDATE that flips used, so concurrent
// callers serialize on the row lock and the losers match nothing.
func (r *TokenRepo) Consume(ctx context.Context, token string, now time.Time) (login.Identity, bool, error) {
	row, err := r.ConsumeLoginToken(ctx, pgen.ConsumeLoginTokenParams{
		Token: token,
		Now:   now.Unix(),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return login.Identity{}, false, nil
	}
	if err != nil {
		return login.Identity{}, false, mapErr(err, "consume token")
	}
	return login.Identity{PlayerUUID: row.PlayerUuid, PlayerName: row.PlayerName}, true, nil
}
