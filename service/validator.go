package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
)

// RedeemToken consumes the token and returns the identity it was issued for.
// A token authenticates at most once, even under concurrent redemption.
func (s *Service) RedeemToken(ctx context.Context, token string) (login.Identity, error) {
	if token == "" {
		return login.Identity{}, login.ErrMissingToken
	}
	logger := log.With().Str("token", login.Redact(token)).Logger()

	t, err := s.tr.Get(ctx, token)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Debug().Msg("token lookup found nothing")
		return login.Identity{}, login.ErrInvalidToken
	case err != nil:
		return login.Identity{}, fmt.Errorf("fetch token: %w", err)
	}

	now := s.now()
	if !t.Redeemable(now) {
		logger.Debug().Bool("used", t.Used).Bool("expired", t.Expired(now)).Msg("token is not redeemable")
		return login.Identity{}, login.ErrExpiredOrUsed
	}

	id, ok, err := s.tr.Consume(ctx, token, now)
	if err != nil {
		return login.Identity{}, fmt.Errorf("consume token: %w", err)
	}
	if !ok {
		logger.Debug().Msg("token consumed by a concurrent redemption")
		return login.Identity{}, login.ErrExpiredOrUsed
	}

	touched, err := s.pr.Touch(ctx, id.PlayerUUID, id.PlayerName, now)
	if err != nil {
		logger.Err(err).Caller().Str("player_uuid", id.PlayerUUID).Msg("profile refresh failed during redemption")
	} else if !touched {
		logger.Debug().Str("player_uuid", id.PlayerUUID).Msg("no profile to refresh")
	}
	logger.Info().Str("player_uuid", id.PlayerUUID).Msg("login token redeemed")
	return id, nil
}
