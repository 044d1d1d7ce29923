package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
)

// IssueToken syncs the player's profile and stores a new unused token.
//
// Profile sync is best-effort. Only a failure to store the token fails the call.
func (s *Service) IssueToken(ctx context.Context, req login.IssueRequest) error {
	if !req.Valid() {
		return login.ErrMissingField
	}
	if err := s.checkCooldown(ctx, req.PlayerUUID); err != nil {
		return err
	}

	now := s.now()
	if err := s.syncProfile(ctx, req.PlayerUUID, req.PlayerName, now); err != nil {
		log.Err(err).Caller().Str("player_uuid", req.PlayerUUID).Msg("profile sync failed during issuance")
	}

	err := s.tr.Insert(ctx, req.NewToken())
	if err != nil {
		// no link was handed out, the player may ask again right away
		s.releaseCooldown(ctx, req.PlayerUUID)
	}
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return login.ErrConflict
	case err != nil:
		return fmt.Errorf("store token: %w", err)
	}
	log.Debug().
		Str("player_uuid", req.PlayerUUID).
		Str("token", login.Redact(req.Token)).
		Int64("expires_at", req.ExpiresAt).
		Msg("login token issued")
	return nil
}

// syncProfile creates the profile on first sight of a player and otherwise
// resyncs its name and last login.
func (s *Service) syncProfile(ctx context.Context, playerUUID, playerName string, now time.Time) error {
	_, err := s.pr.GetByUUID(ctx, playerUUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		err = s.pr.Create(ctx, login.Profile{
			PlayerUUID: playerUUID,
			PlayerName: playerName,
			LastLogin:  now,
		})
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		// a concurrent issuance created it first
	case err != nil:
		return err
	}
	return s.pr.Update(ctx, playerUUID, playerName, now)
}

func (s *Service) checkCooldown(ctx context.Context, playerUUID string) error {
	if s.cooldown == nil || s.cooldownTTL <= 0 {
		return nil
	}
	ok, err := s.cooldown.Acquire(ctx, playerUUID, s.cooldownTTL)
	if err != nil {
		log.Err(err).Caller().Str("player_uuid", playerUUID).Msg("cooldown check failed, issuing anyway")
		return nil
	}
	if !ok {
		return login.ErrOnCooldown
	}
	return nil
}

func (s *Service) releaseCooldown(ctx context.Context, playerUUID string) {
	if s.cooldown == nil || s.cooldownTTL <= 0 {
		return
	}
	if err := s.cooldown.Release(ctx, playerUUID); err != nil {
		log.Err(err).Caller().Str("player_uuid", playerUUID).Msg("failed to release cooldown")
	}
}
