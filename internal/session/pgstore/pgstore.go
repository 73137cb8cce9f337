// Package pgstore keeps session credentials in Postgres, one row per profile,
// so several machines or CI runners can share a login.
package pgstore

import (
	"context"
	"errors"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/store"
	"stridekit/internal/session"

	"github.com/jackc/pgx/v5"
)

// DefaultProfile is used when no profile name is given
const DefaultProfile = "default"

const schema = `
create table if not exists stridekit_sessions (
	profile       text primary key,
	access_token  text not null,
	refresh_token text,
	expires_at    timestamptz,
	user_id       text,
	updated_at    timestamptz not null default now()
)`

const (
	qLoad = `
select access_token, refresh_token, expires_at, user_id
  from stridekit_sessions
 where profile = $1`

	qSave = `
insert into stridekit_sessions (profile, access_token, refresh_token, expires_at, user_id, updated_at)
values ($1, $2, $3, $4, $5, now())
on conflict (profile) do update
   set access_token  = excluded.access_token,
       refresh_token = excluded.refresh_token,
       expires_at    = excluded.expires_at,
       user_id       = excluded.user_id,
       updated_at    = now()`

	qClear = `delete from stridekit_sessions where profile = $1`
)

// Store implements session.Store over a store.RowQuerier
type Store struct {
	q       store.RowQuerier
	profile string
}

var _ session.Store = (*Store)(nil)

// New returns a store for profile; an empty profile means DefaultProfile
func New(q store.RowQuerier, profile string) *Store {
	if profile == "" {
		profile = DefaultProfile
	}
	return &Store{q: q, profile: profile}
}

// Migrate creates the sessions table if it is missing
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, schema); err != nil {
		return perr.FromPostgres(err, "create sessions table")
	}
	return nil
}

// Load implements session.Store
func (s *Store) Load(ctx context.Context) (session.Credential, error) {
	var (
		access    string
		refresh   *string
		expiresAt *time.Time
		userID    *string
	)
	err := s.q.QueryRow(ctx, qLoad, s.profile).Scan(&access, &refresh, &expiresAt, &userID)
	switch {
	case errors.Is(err, pgx.ErrNoRows), perr.IsUndefinedTable(err):
		return session.Credential{}, session.ErrNoSession
	case err != nil:
		return session.Credential{}, perr.FromPostgresf(err, "load session %q", s.profile)
	}
	return session.Credential{
		AccessToken:  access,
		RefreshToken: store.Value(refresh),
		ExpiresAt:    store.Value(expiresAt).UTC(),
		UserID:       store.Value(userID),
	}, nil
}

// Save implements session.Store
func (s *Store) Save(ctx context.Context, c session.Credential) error {
	_, err := s.q.Exec(ctx, qSave,
		s.profile,
		c.AccessToken,
		store.Null(c.RefreshToken),
		store.Null(c.ExpiresAt),
		store.Null(c.UserID),
	)
	if err != nil {
		return perr.FromPostgresf(err, "save session %q", s.profile)
	}
	return nil
}

// Clear implements session.Store
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.q.Exec(ctx, qClear, s.profile)
	if err != nil && !perr.IsUndefinedTable(err) {
		return perr.FromPostgresf(err, "clear session %q", s.profile)
	}
	return nil
}
