// Package hasher checks secrets against stored bcrypt hashes
package hasher

import (
	"github.com/lordvidex/errs"
	"golang.org/x/crypto/bcrypt"
)

type Bcrypt struct{}

func (b *Bcrypt) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b *Bcrypt) Compare(hashed, original string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(original))
	if err != nil {
		return errs.B().Code(errs.Unauthenticated).Msg("credentials do not match").Err()
	}
	return nil
}
