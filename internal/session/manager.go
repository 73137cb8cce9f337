package session

import (
	"context"
	"errors"
	"sync"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"

	"golang.org/x/sync/singleflight"
)

// Event tells listeners why the held credential changed
type Event uint8

const (
	// EventLogin fires after Set stored a fresh credential
	EventLogin Event = iota + 1
	// EventRefresh fires after a successful refresh
	EventRefresh
	// EventLogout fires after Clear
	EventLogout
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventRefresh:
		return "refresh"
	case EventLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Listener observes credential changes. It runs synchronously on the caller's goroutine
type Listener func(ctx context.Context, ev Event, c Credential)

const refreshKey = "refresh"

// Manager is the single owner of the session credential.
// Reads see either the old or the new credential, never a mix, and concurrent
// refreshes share one in-flight network call.
type Manager struct {
	store Store

	mu        sync.RWMutex
	cred      Credential
	loaded    bool
	refresher Refresher
	listeners []Listener

	group singleflight.Group
	log   logger.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithRefresher sets the network refresher. It can also be attached later with SetRefresher
func WithRefresher(r Refresher) Option { return func(m *Manager) { m.refresher = r } }

// NewManager builds a Manager over store; a nil store keeps the credential in memory only
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		store = NewMemStore()
	}
	m := &Manager{
		store: store,
		log:   *logger.Named("session"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetRefresher attaches the refresher after construction, for clients that need the manager first
func (m *Manager) SetRefresher(r Refresher) {
	m.mu.Lock()
	m.refresher = r
	m.mu.Unlock()
}

// Subscribe registers a listener for login, refresh and logout events
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Get returns the held credential, loading it from the store on first use.
// An empty store yields ErrNoSession.
func (m *Manager) Get(ctx context.Context) (Credential, error) {
	m.mu.RLock()
	cred, loaded := m.cred, m.loaded
	m.mu.RUnlock()
	if loaded {
		if cred.Empty() {
			return Credential{}, ErrNoSession
		}
		return cred, nil
	}

	stored, err := m.store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return Credential{}, perr.Wrap(err, perr.CodeOf(err), "load session")
	}

	m.mu.Lock()
	// a concurrent Set or Refresh may have won while we were loading
	if !m.loaded {
		m.cred, m.loaded = stored, true
	}
	cred = m.cred
	m.mu.Unlock()

	if cred.Empty() {
		return Credential{}, ErrNoSession
	}
	return cred, nil
}

// Set stores c as the current credential, typically right after login
func (m *Manager) Set(ctx context.Context, c Credential) error {
	if c.Empty() {
		return perr.InvalidArgf("credential has no access token")
	}
	if err := m.swap(ctx, c); err != nil {
		return err
	}
	m.emit(ctx, EventLogin, c)
	return nil
}

// Clear forgets the credential in memory and in the store
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	prev := m.cred
	m.cred, m.loaded = Credential{}, true
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return perr.Wrap(err, perr.CodeOf(err), "clear session")
	}
	m.emit(ctx, EventLogout, prev)
	return nil
}

// Refresh renews the credential through the Refresher. Concurrent callers
// wait on the same network call and all receive its result. A caller whose
// ctx ends stops waiting without cancelling the shared refresh.
func (m *Manager) Refresh(ctx context.Context) (Credential, error) {
	return m.shared(ctx, nil)
}

// Renew is Refresh for a request that was rejected while using stale.
// If another caller already replaced stale, the current credential is
// returned without a network call.
func (m *Manager) Renew(ctx context.Context, stale Credential) (Credential, error) {
	if cur, ok := m.renewed(stale); ok {
		return cur, nil
	}
	return m.shared(ctx, &stale)
}

func (m *Manager) shared(ctx context.Context, stale *Credential) (Credential, error) {
	ch := m.group.DoChan(refreshKey, func() (any, error) {
		// a refresh may have landed between the caller's check and this flight
		if stale != nil {
			if cur, ok := m.renewed(*stale); ok {
				return cur, nil
			}
		}
		return m.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return res.Val.(Credential), nil
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	}
}

// renewed returns the in-memory credential when it has moved on from stale
func (m *Manager) renewed(stale Credential) (Credential, bool) {
	m.mu.RLock()
	cur, loaded := m.cred, m.loaded
	m.mu.RUnlock()
	if loaded && !cur.Empty() && cur.AccessToken != stale.AccessToken {
		m.log.Debug().Msg("session already renewed by a concurrent caller")
		return cur, true
	}
	return Credential{}, false
}

func (m *Manager) refresh(ctx context.Context) (Credential, error) {
	m.mu.RLock()
	r := m.refresher
	m.mu.RUnlock()
	if r == nil {
		return Credential{}, perr.New(perr.ErrorCodeRefreshFailed, "no refresher configured")
	}

	// a missing credential still goes to the server: cookie sessions may be renewable without one
	cur, err := m.Get(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return Credential{}, err
	}

	start := time.Now()
	next, err := r.Refresh(ctx, cur)
	if err != nil {
		m.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("session refresh failed")
		return Credential{}, err
	}
	if next.Empty() {
		return Credential{}, perr.New(perr.ErrorCodeRefreshFailed, "refresh returned no access token")
	}
	next = next.merge(cur)

	if err := m.swap(ctx, next); err != nil {
		return Credential{}, err
	}
	m.log.Debug().Dur("elapsed", time.Since(start)).Str("access", logger.Fingerprint(next.AccessToken)).Time("expires_at", next.ExpiresAt).Msg("session refreshed")
	m.emit(ctx, EventRefresh, next)
	return next, nil
}

// swap persists c and then publishes it in memory
func (m *Manager) swap(ctx context.Context, c Credential) error {
	if err := m.store.Save(ctx, c); err != nil {
		return perr.Wrap(err, perr.CodeOf(err), "save session")
	}
	m.mu.Lock()
	m.cred, m.loaded = c, true
	m.mu.Unlock()
	return nil
}

func (m *Manager) emit(ctx context.Context, ev Event, c Credential) {
	m.mu.RLock()
	ls := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range ls {
		l(ctx, ev, c)
	}
}
