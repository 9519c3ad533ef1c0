package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt seals passwords with golang.org/x/crypto/bcrypt. A zero Cost means
// bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Seal(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func (Bcrypt) Verify(sealed, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(sealed), []byte(candidate)) == nil
}
