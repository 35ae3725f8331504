package cache

import (
	"context"
	"sync"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

type UserSource interface {
	LoadUsers(ctx context.Context) ([]user.User, error)
}

// Users is the in-process snapshot of the users document. It is populated
// once, either by Warm at startup or by the first lookup, and stays fixed
// until Invalidate or Reload.
type Users struct {
	src UserSource

	// loadMu makes concurrent first lookups share a single load.
	loadMu sync.Mutex

	mu     sync.RWMutex
	users  []user.User
	loaded bool
}

func NewUsers(src UserSource) *Users {
	return &Users{src: src}
}

func (c *Users) Warm(ctx context.Context) error {
	_, err := c.snapshot(ctx)
	return err
}

// FindByAPIKey returns the first user whose API key equals key exactly.
func (c *Users) FindByAPIKey(ctx context.Context, key string) (user.User, bool, error) {
	users, err := c.snapshot(ctx)
	if err != nil {
		return user.User{}, false, err
	}

	for _, u := range users {
		if u.APIKey == key {
			return u, true, nil
		}
	}

	return user.User{}, false, nil
}

// Invalidate drops the snapshot; the next lookup reloads from the source.
func (c *Users) Invalidate() {
	c.mu.Lock()
	c.users = nil
	c.loaded = false
	c.mu.Unlock()
}

// Reload replaces the snapshot right away and returns the number of users loaded.
func (c *Users) Reload(ctx context.Context) (int, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	users, err := c.src.LoadUsers(ctx)
	if err != nil {
		return 0, err
	}

	c.store(users)

	return len(users), nil
}

func (c *Users) snapshot(ctx context.Context) ([]user.User, error) {
	if users, ok := c.cached(); ok {
		return users, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// another caller may have finished loading while we waited
	if users, ok := c.cached(); ok {
		return users, nil
	}

	users, err := c.src.LoadUsers(ctx)
	if err != nil {
		return nil, err
	}

	c.store(users)

	return users, nil
}

func (c *Users) cached() ([]user.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.users, c.loaded
}

func (c *Users) store(users []user.User) {
	c.mu.Lock()
	c.users = users
	c.loaded = true
	c.mu.Unlock()
}
