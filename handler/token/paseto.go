package token

import (
	"context"
	"errors"
	"time"

	"github.com/lordvidex/x/auth"
	"github.com/o1egl/paseto/v2"

	"github.com/kodekulture/tokenlink/login"
)

var (
	defaultFooter = "tokenlink"

	ErrExpired = errors.New("session token expired")
	ErrIssuer  = errors.New("session token issued by someone else")
)

type Paseto struct {
	v2           *paseto.V2
	footer       string
	symmetricKey []byte
	period       time.Duration
	now          func() time.Time
}

// claims is the encrypted session payload
type claims struct {
	IssuedAt   time.Time `json:"iat"`
	Expiration time.Time `json:"exp"`
	Issuer     string    `json:"iss"`
	PlayerUUID string    `json:"sub"`
	PlayerName string    `json:"name"`
}

func New(key []byte, footer string, validity time.Duration) (*Paseto, error) {
	if len(key) != 32 {
		return nil, errors.New("invalid key length, key must be 32 bytes long")
	}
	if footer == "" {
		footer = defaultFooter
	}
	pas := Paseto{
		v2:           paseto.NewV2(),
		symmetricKey: key,
		footer:       footer,
		period:       validity,
		now:          time.Now,
	}
	return &pas, nil
}

func (p *Paseto) Generate(_ context.Context, id login.Identity) (auth.Token, error) {
	now := p.now()
	payload := claims{
		IssuedAt:   now,
		Expiration: now.Add(p.period),
		Issuer:     p.footer,
		PlayerUUID: id.PlayerUUID,
		PlayerName: id.PlayerName,
	}
	str, err := p.v2.Encrypt(p.symmetricKey, payload, p.footer)
	if err != nil {
		return "", err
	}
	return auth.Token(str), nil
}

func (p *Paseto) Validate(_ context.Context, token auth.Token) (login.Identity, error) {
	var (
		payload claims
		footer  string
	)
	if err := p.v2.Decrypt(string(token), p.symmetricKey, &payload, &footer); err != nil {
		return login.Identity{}, err
	}
	if payload.Issuer != p.footer || footer != p.footer {
		return login.Identity{}, ErrIssuer
	}
	if p.now().After(payload.Expiration) {
		return login.Identity{}, ErrExpired
	}
	return login.Identity{PlayerUUID: payload.PlayerUUID, PlayerName: payload.PlayerName}, nil
}
