package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stridekit/internal/adapters/api"
	"stridekit/internal/adapters/fakeapi"
	"stridekit/internal/core/calendar"
	perr "stridekit/internal/platform/errors"
	"stridekit/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type harness struct {
	fake     *fakeapi.Server
	ts       *httptest.Server
	client   *api.Client
	sessions *session.Manager
}

func newHarness(t *testing.T, fo fakeapi.Options, o api.Options) *harness {
	t.Helper()
	fake := fakeapi.New(fo)
	ts := httptest.NewServer(fake.Handler())
	tr := &http.Transport{}
	t.Cleanup(func() {
		fake.Close()
		ts.Close()
		tr.CloseIdleConnections()
	})

	o.BaseURL = ts.URL
	o.HTTPClient = &http.Client{Transport: tr, Timeout: 5 * time.Second}
	sessions := session.NewManager(session.NewMemStore())
	c, err := api.NewClient(o, sessions)
	require.NoError(t, err)
	return &harness{fake: fake, ts: ts, client: c, sessions: sessions}
}

func (h *harness) login(t *testing.T) session.Credential {
	t.Helper()
	cred, err := h.client.Login(context.Background(), fakeapi.DemoUser, fakeapi.DemoPassword)
	require.NoError(t, err)
	return cred
}

func TestLogin_CookieScheme(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	cred := h.login(t)

	assert.Equal(t, "1", cred.UserID)
	assert.NotEmpty(t, cred.AccessToken)
	assert.NotEmpty(t, cred.RefreshToken)
	assert.False(t, cred.ExpiresAt.IsZero())

	me, err := h.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakeapi.DemoUser, me.Username)
	require.NotNil(t, me.FirstDayOfWeek)
	assert.Equal(t, 1, *me.FirstDayOfWeek)
}

func TestLogin_BearerWithTokenBody(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{Scheme: api.SchemeBearer, ClientType: "mobile"})
	cred := h.login(t)
	assert.Equal(t, "1", cred.UserID)

	_, err := h.client.Me(context.Background())
	require.NoError(t, err)
}

func TestLogin_Rejected(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	ctx := context.Background()

	_, err := h.client.Login(ctx, fakeapi.DemoUser, "wrong")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized), "got %v", err)
	assert.Zero(t, h.fake.Refreshes(), "a failed login is not an expired session")

	_, err = h.client.Login(ctx, "", "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	_, err = h.sessions.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSend_ExpiredSessionRefreshesOnceAndReplaysOnce(t *testing.T) {
	signals := map[string]fakeapi.ExpirySignal{
		"code and challenge": fakeapi.SignalBoth,
		"code only":          fakeapi.SignalCode,
		"challenge only":     fakeapi.SignalChallenge,
	}
	schemes := map[string]api.Options{
		"cookie": {},
		"bearer": {Scheme: api.SchemeBearer, ClientType: "mobile"},
	}
	for sname, signal := range signals {
		for cname, o := range schemes {
			t.Run(sname+"/"+cname, func(t *testing.T) {
				h := newHarness(t, fakeapi.Options{Signal: signal}, o)
				before := h.login(t)
				h.fake.ExpireAccess()

				me, err := h.client.Me(context.Background())
				require.NoError(t, err)
				assert.Equal(t, int64(fakeapi.DemoUserID), me.ID)

				assert.Equal(t, 1, h.fake.Refreshes())
				assert.Equal(t, 2, h.fake.Hits(http.MethodGet, api.PathMe), "one rejected attempt and one replay")

				after, err := h.sessions.Get(context.Background())
				require.NoError(t, err)
				assert.NotEqual(t, before.AccessToken, after.AccessToken)
				assert.Equal(t, before.RefreshToken, after.RefreshToken)
				assert.Equal(t, before.UserID, after.UserID, "user id survives the refresh")
			})
		}
	}
}

func TestSend_OtherFailuresAreNotRetried(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	ctx := context.Background()

	_, err := h.client.Activity(ctx, 99999)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "got %v", err)
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.False(t, se.AuthExpired())

	_, err = h.client.Send(ctx, api.Request{Method: http.MethodGet, Path: api.PathActivities, Query: map[string][]string{"page": {"0"}}})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument), "got %v", err)

	assert.Zero(t, h.fake.Refreshes())
	assert.Equal(t, 1, h.fake.Hits(http.MethodGet, api.PathActivities+"/99999"))
}

func TestSend_FailedRefreshIsNotRetried(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	before := h.login(t)
	h.fake.ExpireAccess()
	h.fake.FailRefresh(true)

	_, err := h.client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeRefreshFailed), "got %v", err)
	assert.Contains(t, err.Error(), "failed to refresh session")

	var se *api.StatusError
	require.True(t, errors.As(err, &se), "the refresh rejection stays reachable")
	assert.Equal(t, fakeapi.CodeRefreshTokenInvalid, se.Code)

	assert.Equal(t, 1, h.fake.Refreshes())
	assert.Equal(t, 1, h.fake.Hits(http.MethodGet, api.PathMe), "no replay after a failed refresh")

	cur, err := h.sessions.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.AccessToken, cur.AccessToken)
}

func TestSend_WithoutSession(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})

	_, err := h.client.Me(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeRefreshFailed), "got %v", err)
	assert.Equal(t, 1, h.fake.Refreshes())
	assert.Equal(t, 1, h.fake.Hits(http.MethodGet, api.PathMe))
}

func TestSend_ConcurrentExpiryCoalesces(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	h.fake.ExpireAccess()

	const callers = 12
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.client.Me(context.Background())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.fake.Refreshes())
}

func TestUpload_ReplaysTheSameBytes(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	h.fake.ExpireAccess()

	content := "<gpx><trk><name>tempo</name></trk></gpx>"
	a, err := h.client.UploadActivity(context.Background(), "tempo.gpx", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "tempo", a.Name)
	assert.Equal(t, content, string(h.fake.Upload(a.ID)))
	assert.Equal(t, 2, h.fake.Hits(http.MethodPost, api.PathUpload))
	assert.Equal(t, 1, h.fake.Refreshes())

	_, err = h.client.UploadActivity(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument), "got %v", err)
}

func TestResources(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	ctx := context.Background()

	page, err := h.client.ListActivities(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Recovery jog", page.Items[0].Name)

	_, err = h.client.ListActivities(ctx, 0, 2)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	gear, err := h.client.AddGear(ctx, api.GearInput{Nickname: "Gravel", Type: 1, InitialKm: 1250.5})
	require.NoError(t, err)
	assert.True(t, gear.Active)
	assert.InDelta(t, 1250.5, gear.InitialKm, 1e-9)

	all, err := h.client.ListGear(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	followers, err := h.client.Followers(ctx)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, int64(fakeapi.OtherUserID), followers[0].FollowerID)
}

func TestCalendarFilters(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	ctx := context.Background()

	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	ref := time.Date(2025, time.March, 12, 9, 0, 0, 0, lisbon)

	week, err := calendar.Bounds(calendar.PeriodWeek, ref, time.Monday, lisbon)
	require.NoError(t, err)
	acts, err := h.client.ActivitiesIn(ctx, week)
	require.NoError(t, err)
	assert.Len(t, acts, 4)

	sum, err := h.client.Summary(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, "week", sum.Period)
	assert.Equal(t, 4, sum.Activities)
	assert.InDelta(t, 150500, sum.DistanceM, 0.001)

	month, err := calendar.Bounds(calendar.PeriodMonth, ref, time.Monday, lisbon)
	require.NoError(t, err)
	weights, err := h.client.HealthWeights(ctx, month)
	require.NoError(t, err)
	assert.Len(t, weights, 2)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	cred := h.login(t)
	ctx := context.Background()

	require.NoError(t, h.client.Logout(ctx))
	_, err := h.sessions.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	// the server revoked the old token too
	require.NoError(t, h.sessions.Set(ctx, cred))
	_, err = h.client.Me(ctx)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized), "got %v", err)
}

func TestLogout_ClearsLocallyWhenServerIsDown(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	h.ts.Close()

	err := h.client.Logout(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNetwork), "got %v", err)

	_, err = h.sessions.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSend_NetworkError(t *testing.T) {
	h := newHarness(t, fakeapi.Options{}, api.Options{})
	h.login(t)
	h.ts.Close()

	_, err := h.client.Me(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNetwork), "got %v", err)
	var se *api.StatusError
	assert.False(t, errors.As(err, &se))
}

// scripted replies in order, recording what the client sent
type script struct {
	mu      sync.Mutex
	replies []func(w http.ResponseWriter)
	seen    []*http.Request
}

func (s *script) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, _ = io.Copy(io.Discard, r.Body)
	s.seen = append(s.seen, r.Clone(context.Background()))
	next := s.replies[0]
	s.replies = s.replies[1:]
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	next(w)
}

func (s *script) requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.seen...)
}

func reply(status int, body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func scripted(t *testing.T, o api.Options, replies ...func(http.ResponseWriter)) (*script, *api.Client, *session.Manager) {
	t.Helper()
	s := &script{replies: replies}
	ts := httptest.NewServer(s)
	tr := &http.Transport{}
	t.Cleanup(func() {
		ts.Close()
		tr.CloseIdleConnections()
	})
	o.BaseURL = ts.URL + "/api/v1"
	o.HTTPClient = &http.Client{Transport: tr}
	m := session.NewManager(nil)
	c, err := api.NewClient(o, m)
	require.NoError(t, err)
	return s, c, m
}

func TestSend_HeadersAndCookies(t *testing.T) {
	s, c, m := scripted(t, api.Options{}, reply(200, `{"id":1}`))
	require.NoError(t, m.Set(context.Background(), session.Credential{AccessToken: "a", RefreshToken: "r"}))

	_, err := c.Me(context.Background())
	require.NoError(t, err)

	req := s.requests()[0]
	assert.Equal(t, "/api/v1/users/me", req.URL.Path)
	assert.Equal(t, "web", req.Header.Get(api.HeaderClientType))
	assert.True(t, strings.HasPrefix(req.Header.Get("User-Agent"), "stridekit/"))
	assert.Len(t, req.Header.Get("X-Request-ID"), 36)

	ck, err := req.Cookie("endurain_access_token")
	require.NoError(t, err)
	assert.Equal(t, "a", ck.Value)
	_, err = req.Cookie("endurain_refresh_token")
	assert.ErrorIs(t, err, http.ErrNoCookie, "the refresh cookie only goes to /refresh")
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSend_BearerRefreshUsesRefreshToken(t *testing.T) {
	s, c, m := scripted(t, api.Options{Scheme: api.SchemeBearer},
		reply(401, `{"detail":"Token has expired","code":"token_expired"}`),
		reply(200, `{"access_token":"a2","expires_in":60}`),
		reply(200, `{"id":1,"username":"demo"}`),
	)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, session.Credential{AccessToken: "a1", RefreshToken: "r", UserID: "1"}))

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", me.Username)

	reqs := s.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "Bearer a1", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "/api/v1/refresh", reqs[1].URL.Path)
	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "Bearer r", reqs[1].Header.Get("Authorization"))
	assert.Equal(t, "Bearer a2", reqs[2].Header.Get("Authorization"))
	assert.NotEqual(t, reqs[0].Header.Get("X-Request-ID"), reqs[2].Header.Get("X-Request-ID"))

	cur, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", cur.AccessToken)
	assert.Equal(t, "r", cur.RefreshToken)
	assert.Equal(t, "1", cur.UserID)
}

func TestSend_ExpiryWordingDoesNotRefresh(t *testing.T) {
	s, c, m := scripted(t, api.Options{}, reply(401, `{"detail":"Your token expired, please log in"}`))
	require.NoError(t, m.Set(context.Background(), session.Credential{AccessToken: "a"}))

	_, err := c.Me(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized), "got %v", err)
	assert.Len(t, s.requests(), 1)
}

func TestSend_ServerErrorDetailFallback(t *testing.T) {
	_, c, _ := scripted(t, api.Options{}, reply(503, ``))

	_, err := c.Me(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Service Unavailable", se.Detail)
}

func TestNewClient_Validation(t *testing.T) {
	for _, base := range []string{"", "ftp://host", "http://", "://bad"} {
		_, err := api.NewClient(api.Options{BaseURL: base}, nil)
		require.Error(t, err, base)
		assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument), base)
		e, ok := perr.As(err)
		require.True(t, ok)
		assert.Equal(t, "base_url", e.Field())
	}

	_, err := api.NewClient(api.Options{BaseURL: "http://x", Scheme: "basic"}, nil)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	c, err := api.NewClient(api.Options{BaseURL: "https://demo.example.com/api/v1/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://demo.example.com/api/v1", c.BaseURL().String())
	assert.Equal(t, "wss://demo.example.com/api/v1/ws/42", c.WebSocketURL("/ws/42"))
	assert.NotNil(t, c.Sessions())
}

func TestAuthHeader(t *testing.T) {
	ctx := context.Background()
	c, err := api.NewClient(api.Options{BaseURL: "http://demo.local"}, nil)
	require.NoError(t, err)

	_, err = c.AuthHeader(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, c.Sessions().Set(ctx, session.Credential{AccessToken: "a", RefreshToken: "r"}))
	h, err := c.AuthHeader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "endurain_access_token=a", h.Get("Cookie"))
	assert.Equal(t, "web", h.Get(api.HeaderClientType))
	assert.Equal(t, "ws://demo.local/ws/1", c.WebSocketURL("ws/1"))
}
