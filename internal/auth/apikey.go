package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

// HeaderAPIKey carries the caller's static credential.
const HeaderAPIKey = "x-api-key"

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrInvalidAPIKey = errors.New("invalid api key")
)

// Keep this small interface so tests can fake it easily.
type UserLookup interface {
	FindByAPIKey(ctx context.Context, key string) (user.User, bool, error)
}

type Authenticator struct {
	users UserLookup
}

func NewAuthenticator(users UserLookup) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate resolves key to the identity of the first user holding it.
// No hashing or expiry: a key is valid as long as its user record exists.
func (a *Authenticator) Authenticate(ctx context.Context, key string) (user.Identity, error) {
	if key == "" {
		return user.Identity{}, ErrMissingAPIKey
	}

	u, ok, err := a.users.FindByAPIKey(ctx, key)
	if err != nil {
		return user.Identity{}, fmt.Errorf("lookup api key: %w", err)
	}
	if !ok {
		return user.Identity{}, ErrInvalidAPIKey
	}

	return u.Identity(), nil
}
