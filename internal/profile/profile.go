// Package profile defines the contract with the external identity service.
// Resolving a username to profile data is the only outward call the town
// core makes, and it happens at join time only.
package profile

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ID          string
	Username    string
	DisplayName string
	Avatar      string
}

type Resolver interface {
	// ResolveUsername returns the profile for a username, or ErrNotFound.
	ResolveUsername(ctx context.Context, username string) (Profile, error)
}
