// Package token is responsible for generating and validating session tokens
// handed to a browser after a successful redemption
package token

import (
	"context"

	"github.com/lordvidex/x/auth"

	"github.com/kodekulture/tokenlink/login"
)

type Handler interface {
	// Generate creates a new session token for the given identity
	Generate(context.Context, login.Identity) (auth.Token, error)
	// Validate validates the given token and returns the identity it carries
	Validate(context.Context, auth.Token) (login.Identity, error)
}
