// Package fakeapi is an in-process stand-in for the activity platform. It
// issues expiring tokens, serves the resources the client reads and pushes
// events over a per-user websocket, so the client can be exercised end to end
// without the real backend.
package fakeapi

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"stridekit/internal/adapters/api"
	"stridekit/internal/platform/logger"
	phttp "stridekit/internal/platform/net/http"
	"stridekit/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
)

// ExpirySignal selects how an expired access token is reported
type ExpirySignal uint8

const (
	// SignalBoth sends the token_expired body code and a WWW-Authenticate challenge
	SignalBoth ExpirySignal = iota
	// SignalCode sends only the body code
	SignalCode
	// SignalChallenge sends only the RFC 6750 challenge
	SignalChallenge
)

// Account is a user the fake api accepts at /token
type Account struct {
	api.User
	Password string
}

// Options configures the fake api
type Options struct {
	AccessTTL  time.Duration // default 15m
	RefreshTTL time.Duration // default 7d
	Signal     ExpirySignal

	AccessCookie  string
	RefreshCookie string

	// Accounts replace the seeded demo users
	Accounts []Account
	// CORSOrigins are the browser origins allowed to call with credentials
	CORSOrigins []string

	Now func() time.Time
}

func (o *Options) defaults() {
	if o.AccessTTL <= 0 {
		o.AccessTTL = 15 * time.Minute
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 7 * 24 * time.Hour
	}
	if o.AccessCookie == "" {
		o.AccessCookie = "endurain_access_token"
	}
	if o.RefreshCookie == "" {
		o.RefreshCookie = "endurain_refresh_token"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Server holds the fake api state. All methods are safe for concurrent use.
type Server struct {
	opts Options
	log  logger.Logger
	mux  *chi.Mux

	mu       sync.Mutex
	accounts map[string]*Account // by username
	grants   map[string]*grant   // by access token
	refresh  map[string]*grant   // by refresh token
	data     map[int64]*userData
	uploads  map[int64][]byte
	nextID   int64
	hits     map[string]int

	failRefresh atomic.Bool
	hub         *hub
}

// New builds a fake api seeded with opts.Accounts or the demo users
func New(opts Options) *Server {
	opts.defaults()
	s := &Server{
		opts:     opts,
		log:      *logger.Named("fakeapi"),
		accounts: map[string]*Account{},
		grants:   map[string]*grant{},
		refresh:  map[string]*grant{},
		data:     map[int64]*userData{},
		uploads:  map[int64][]byte{},
		hits:     map[string]int{},
		hub:      newHub(),
	}
	s.seed(opts.Accounts)

	s.mux = chi.NewRouter()
	s.Mount(phttp.AdaptChi(s.mux))
	return s
}

// Handler serves the fake api, e.g. behind httptest.NewServer
func (s *Server) Handler() http.Handler { return s.mux }

// Mount installs the middleware chain and routes on r. Middleware goes in
// with r.Use, so r must not have routes yet.
func (s *Server) Mount(r phttp.Router) {
	r.Use(middleware.Defaults()...)
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowCredentials: true,
	}))
	r.Use(s.count)

	r.Post(api.PathToken, s.token)
	r.Post(api.PathRefresh, s.renew)
	r.Post(api.PathLogout, s.logout)

	r.Group(func(pr phttp.Router) {
		pr.Use(middleware.Auth(s, s.writeAuthError))

		phttp.GetJSON(pr, api.PathMe, s.me)
		phttp.GetJSON(pr, api.PathActivities, s.listActivities)
		phttp.GetJSON(pr, api.PathActivities+"/{id}", s.activity)
		pr.Post(api.PathUpload, phttp.Handle(s.upload))
		phttp.GetJSON(pr, api.PathGear, s.listGear)
		phttp.PostJSON(pr, api.PathGear, s.addGear)
		phttp.GetJSON(pr, api.PathWeight, s.listWeights)
		phttp.GetJSON(pr, api.PathFollowers, s.listFollowers)
		phttp.GetJSON(pr, api.PathSummaries, s.summary)
		pr.Get("/ws/{user_id}", s.live)
	})
}

// count tallies every request by method and path, rejected ones included
func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Hits reports how many requests reached method and path
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// Refreshes reports how many refresh calls the server received
func (s *Server) Refreshes() int { return s.Hits(http.MethodPost, api.PathRefresh) }

// ExpireAccess makes every issued access token expired; refresh tokens stay valid
func (s *Server) ExpireAccess() {
	now := s.opts.Now()
	s.mu.Lock()
	for _, g := range s.grants {
		g.accessExp = now
	}
	s.mu.Unlock()
}

// FailRefresh makes /refresh reject every call while on is true
func (s *Server) FailRefresh(on bool) { s.failRefresh.Store(on) }

// Publish pushes an event to every socket of userID and reports how many got it
func (s *Server) Publish(userID int64, typ string, payload any) int {
	return s.hub.publish(userID, event{Type: typ, Payload: payload})
}

// Connections reports the open sockets of userID
func (s *Server) Connections(userID int64) int { return s.hub.count(userID) }

// Close drops every open socket
func (s *Server) Close() { s.hub.closeAll("server closing") }
