package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

// SampleUsers are written when users.json cannot be read.
func SampleUsers() []user.User {
	return []user.User{
		{ID: "1", Username: "alice", Role: user.RoleUser, APIKey: "key-alice-123"},
		{ID: "2", Username: "bob", Role: user.RoleAdmin, APIKey: "key-bob-456"},
	}
}

// LoadUsers reads users.json. Any read or decode failure, including a
// missing file, is answered with the sample users, which are persisted
// best-effort. Only a cancelled context is returned as an error.
func (s *Store) LoadUsers(ctx context.Context) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []user.User

	err := s.observe(ctx, "users.read", func() error {
		raw, err := os.ReadFile(s.UsersPath())
		if err != nil {
			return err
		}

		if err := json.Unmarshal(raw, &users); err != nil {
			return fmt.Errorf("decode %s: %w", usersFile, err)
		}
		return nil
	})

	if err == nil && users != nil {
		return users, nil
	}

	s.log.WarnContext(ctx, "users document unreadable, writing sample users", "path", s.UsersPath(), "err", err)

	users = SampleUsers()
	if s.prom != nil {
		s.prom.RecordRecovery(usersFile)
	}

	werr := s.observe(ctx, "users.write", func() error {
		return writeJSONAtomic(s.UsersPath(), users)
	})
	if werr != nil {
		s.log.ErrorContext(ctx, "could not persist sample users", "path", s.UsersPath(), "err", werr)
	}

	return users, nil
}
