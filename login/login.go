// Package login contains the core types of the login token lifecycle
package login

import (
	"time"

	"github.com/lordvidex/errs"
)

// Errors returned by the Token Issuer and the Token Validator.
//
// ErrInvalidToken and ErrExpiredOrUsed are kept apart for logging, callers
// outside the trust boundary must not be able to tell them apart.
var (
	ErrMissingField  = errs.B().Code(errs.InvalidArgument).Msg("Missing required fields").Err()
	ErrMissingToken  = errs.B().Code(errs.InvalidArgument).Msg("No token provided").Err()
	ErrInvalidToken  = errs.B().Code(errs.InvalidArgument).Msg("invalid token").Err()
	ErrExpiredOrUsed = errs.B().Code(errs.InvalidArgument).Msg("token expired or already used").Err()
	ErrConflict      = errs.B().Code(errs.InvalidArgument).Msg("token already exists").Err()
	ErrOnCooldown    = errs.B().Code(errs.InvalidArgument).Msg("Please wait before requesting another login link").Err()
)

// Profile is the web-side record of a game player.
type Profile struct {
	CreatedAt  time.Time
	LastLogin  time.Time
	PlayerUUID string
	PlayerName string
	ID         int64
}

// Token is a single-use login token. The Token field is the bearer credential itself.
type Token struct {
	CreatedAt  time.Time
	Token      string
	PlayerUUID string
	PlayerName string
	ExpiresAt  int64 // epoch seconds
	Used       bool
}

// Expired reports whether the token aged past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt < now.Unix()
}

// Redeemable reports whether the token can still be consumed at now.
func (t Token) Redeemable(now time.Time) bool {
	return !t.Used && !t.Expired(now)
}

// Identity returns the identity the token was issued for.
func (t Token) Identity() Identity {
	return Identity{PlayerUUID: t.PlayerUUID, PlayerName: t.PlayerName}
}

// Identity is what a successful redemption proves about the client.
type Identity struct {
	PlayerUUID string `json:"player_uuid"`
	PlayerName string `json:"player_name"`
}

// IssueRequest is the payload a trusted identity source sends to mint a token.
type IssueRequest struct {
	PlayerUUID string `json:"player_uuid" validate:"required"`
	PlayerName string `json:"player_name" validate:"required"`
	Token      string `json:"token" validate:"required"`
	ExpiresAt  int64  `json:"expires_at" validate:"required"`
}

// Valid reports whether every field of the request is present.
func (r IssueRequest) Valid() bool {
	return r.PlayerUUID != "" && r.PlayerName != "" && r.Token != "" && r.ExpiresAt != 0
}

// NewToken returns the unconsumed token described by the request.
func (r IssueRequest) NewToken() Token {
	return Token{
		Token:      r.Token,
		PlayerUUID: r.PlayerUUID,
		PlayerName: r.PlayerName,
		ExpiresAt:  r.ExpiresAt,
	}
}

// Redact returns a prefix of the token that is safe to put in logs.
func Redact(token string) string {
	const keep = 6
	if len(token) <= keep {
		return "***"
	}
	return token[:keep] + "***"
}
