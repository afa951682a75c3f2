// Package identity describes who is making a request, as asserted by the external auth collaborator.
package identity

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNoSession    = errors.New("no session")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the authenticated user as seen by the auth collaborator.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"` // from the user metadata, may be empty
}

func (i Identity) IsZero() bool { return i.ID == "" }

// Provider resolves a session token into an Identity.
type Provider interface {
	// CurrentIdentity returns the identity behind the token.
	// Any error must be treated by callers as "not authenticated".
	CurrentIdentity(ctx context.Context, token string) (Identity, error)
	// SignOut ends the session behind the token.
	SignOut(ctx context.Context, token string) error
}
