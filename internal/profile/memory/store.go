// Package memory is an in-process profile directory for tests and
// single-node development.
package memory

import (
	"context"
	"sync"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
)

type Store struct {
	mu         sync.RWMutex
	byUsername map[string]profile.Profile
	permissive bool
}

func New() *Store {
	return &Store{byUsername: make(map[string]profile.Profile)}
}

// NewPermissive resolves unknown usernames to a synthesized profile instead
// of failing. Used when the server runs without a profile directory.
func NewPermissive() *Store {
	s := New()
	s.permissive = true
	return s
}

func (s *Store) Add(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUsername[p.Username] = p
}

func (s *Store) ResolveUsername(_ context.Context, username string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byUsername[username]
	if !ok {
		if s.permissive {
			return profile.Profile{ID: username, Username: username, DisplayName: username}, nil
		}
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

var _ profile.Resolver = (*Store)(nil)
