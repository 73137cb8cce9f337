package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "stridekit/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingRefresher hands out access-1, access-2, ... and can be held open with gate
type countingRefresher struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context, cur Credential) (Credential, error) {
	n := r.calls.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return Credential{}, r.err
	}
	return Credential{AccessToken: fmt.Sprintf("access-%d", n), ExpiresAt: time.Unix(1_900_000_000, 0)}, nil
}

func TestManager_GetEmpty(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Get(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized))
}

func TestManager_SetPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	m := NewManager(store)
	require.NoError(t, m.Set(ctx, Credential{AccessToken: "a", RefreshToken: "r", UserID: "7"}))

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)

	// a second manager over the same store sees the saved credential
	other := NewManager(store)
	got, err = other.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r", got.RefreshToken)
	assert.Equal(t, "7", got.UserID)

	assert.Error(t, m.Set(ctx, Credential{}), "empty credential must be rejected")
}

func TestManager_RefreshIsSingleFlight(t *testing.T) {
	ctx := context.Background()
	ref := &countingRefresher{gate: make(chan struct{})}
	m := NewManager(NewMemStore(), WithRefresher(ref))
	require.NoError(t, m.Set(ctx, Credential{AccessToken: "access-0", RefreshToken: "keep-me"}))

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Credential, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = m.Refresh(ctx)
		}()
	}

	// let every caller join the in-flight call before releasing it
	require.Eventually(t, func() bool { return ref.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(ref.gate)
	wg.Wait()

	assert.Equal(t, int32(1), ref.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "access-1", results[i].AccessToken)
		assert.Equal(t, "keep-me", results[i].RefreshToken, "refresh token carried over")
	}

	cur, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", cur.AccessToken)
}

func TestManager_RefreshFailureKeepsCredential(t *testing.T) {
	ctx := context.Background()
	boom := perr.New(perr.ErrorCodeRefreshFailed, "failed to refresh session")
	m := NewManager(NewMemStore(), WithRefresher(&countingRefresher{err: boom}))
	require.NoError(t, m.Set(ctx, Credential{AccessToken: "old"}))

	_, err := m.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	cur, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", cur.AccessToken)
}

func TestManager_RefreshWithoutRefresher(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Refresh(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeRefreshFailed))
}

func TestManager_RenewSkipsWhenAlreadyReplaced(t *testing.T) {
	ctx := context.Background()
	ref := &countingRefresher{}
	m := NewManager(nil, WithRefresher(ref))
	require.NoError(t, m.Set(ctx, Credential{AccessToken: "fresh"}))

	got, err := m.Renew(ctx, Credential{AccessToken: "stale"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.AccessToken)
	assert.Zero(t, ref.calls.Load())

	got, err = m.Renew(ctx, Credential{AccessToken: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, int32(1), ref.calls.Load())
}

// a Renew whose outer check saw stale but whose flight starts after another
// refresh landed must not refresh again
func TestManager_RenewRechecksInsideFlight(t *testing.T) {
	ctx := context.Background()
	ref := &countingRefresher{}
	m := NewManager(NewMemStore(), WithRefresher(ref))
	stale := Credential{AccessToken: "access-0", RefreshToken: "r"}
	require.NoError(t, m.Set(ctx, stale))

	first, err := m.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-1", first.AccessToken)

	got, err := m.shared(ctx, &stale)
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, int32(1), ref.calls.Load(), "second /refresh for an already replaced token")

	got, err = m.shared(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
}

func TestManager_WaiterCancellationDoesNotAbortRefresh(t *testing.T) {
	ref := &countingRefresher{gate: make(chan struct{})}
	m := NewManager(nil, WithRefresher(ref))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Refresh(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return ref.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// a second caller joins the still running flight
	second := make(chan Credential, 1)
	go func() {
		c, _ := m.Refresh(context.Background())
		second <- c
	}()
	time.Sleep(10 * time.Millisecond)
	close(ref.gate)

	assert.Equal(t, "access-1", (<-second).AccessToken)
	assert.Equal(t, int32(1), ref.calls.Load())
}

func TestManager_ListenersAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemStore(), WithRefresher(&countingRefresher{}))

	var seen []Event
	m.Subscribe(func(_ context.Context, ev Event, _ Credential) { seen = append(seen, ev) })

	require.NoError(t, m.Set(ctx, Credential{AccessToken: "a"}))
	_, err := m.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx))

	assert.Equal(t, []Event{EventLogin, EventRefresh, EventLogout}, seen)
	assert.Equal(t, "refresh", EventRefresh.String())

	_, err = m.Get(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCredential_Valid(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.False(t, Credential{}.Valid(now))
	assert.True(t, Credential{AccessToken: "a"}.Valid(now))
	assert.True(t, Credential{AccessToken: "a", ExpiresAt: now.Add(time.Minute)}.Valid(now))
	assert.False(t, Credential{AccessToken: "a", ExpiresAt: now}.Valid(now))
}
