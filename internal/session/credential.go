// Package session owns the client's session credential: where it is persisted,
// how it is replaced, and how concurrent refreshes are coalesced.
package session

import (
	"context"
	"time"

	perr "stridekit/internal/platform/errors"
)

// ErrNoSession is returned when nothing has been stored yet or the session was cleared
var ErrNoSession = perr.New(perr.ErrorCodeUnauthorized, "no session")

// Credential is the opaque token pair that proves the user's identity to the api
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	UserID       string    `json:"user_id,omitempty"`
}

// Empty reports whether no access token is held
func (c Credential) Empty() bool { return c.AccessToken == "" }

// Valid reports whether the access token exists and has not passed its expiry.
// A zero ExpiresAt means the server did not say, so the token is assumed valid.
func (c Credential) Valid(now time.Time) bool {
	if c.Empty() {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

// merge fills fields the refresh response left out from the previous credential
func (c Credential) merge(prev Credential) Credential {
	if c.RefreshToken == "" {
		c.RefreshToken = prev.RefreshToken
	}
	if c.UserID == "" {
		c.UserID = prev.UserID
	}
	return c
}

// Store persists a single credential
type Store interface {
	// Load returns ErrNoSession when nothing is stored
	Load(ctx context.Context) (Credential, error)
	Save(ctx context.Context, c Credential) error
	Clear(ctx context.Context) error
}

// Refresher exchanges the current credential for a new one over the network
type Refresher interface {
	Refresh(ctx context.Context, current Credential) (Credential, error)
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context, current Credential) (Credential, error)

// Refresh implements Refresher
func (f RefresherFunc) Refresh(ctx context.Context, current Credential) (Credential, error) {
	return f(ctx, current)
}
