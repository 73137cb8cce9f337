// Package api is the authenticated client for the activity platform's REST api.
// A request rejected because the session expired is retried once, after a
// single refresh shared by every concurrent caller.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stridekit/internal/core/version"
	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	"stridekit/internal/session"

	"github.com/google/uuid"
)

// AuthScheme is how the access token travels
type AuthScheme string

const (
	// SchemeCookie sends the token as a cookie, like the browser client
	SchemeCookie AuthScheme = "cookie"
	// SchemeBearer sends Authorization: Bearer <token>
	SchemeBearer AuthScheme = "bearer"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultClientType    = "web"
	defaultAccessCookie  = "endurain_access_token"
	defaultRefreshCookie = "endurain_refresh_token"

	// HeaderClientType identifies the first-party client to the server
	HeaderClientType = "X-Client-Type"
	headerRequestID  = "X-Request-ID"

	maxBody = 32 << 20
)

// ParseAuthScheme accepts "cookie" or "bearer", case-insensitively; empty means cookie
func ParseAuthScheme(s string) (AuthScheme, error) {
	switch AuthScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeCookie:
		return SchemeCookie, nil
	case SchemeBearer:
		return SchemeBearer, nil
	}
	return "", perr.InvalidArgf("unknown auth scheme %q", s)
}

// Options configures the Client
type Options struct {
	BaseURL string
	Scheme  AuthScheme

	// ClientType is the X-Client-Type value, "web" by default
	ClientType    string
	AccessCookie  string
	RefreshCookie string
	UserAgent     string
	Timeout       time.Duration

	// ExpiredCodes are the 401 body codes that mean "refresh and retry"
	ExpiredCodes []string

	// HTTPClient replaces the default client; Timeout is then ignored
	HTTPClient *http.Client
}

// Client sends requests with the session credential attached
type Client struct {
	http     *http.Client
	opts     Options
	base     *url.URL
	sessions *session.Manager
	log      logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewClient validates o and wires the client as the refresher of sessions
func NewClient(o Options, sessions *session.Manager) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(o.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, perr.WithField(perr.InvalidArgf("api base url must be http(s)://host, got %q", o.BaseURL), "base_url")
	}
	if o.Scheme == "" {
		o.Scheme = SchemeCookie
	}
	if o.Scheme != SchemeCookie && o.Scheme != SchemeBearer {
		return nil, perr.InvalidArgf("unknown auth scheme %q", o.Scheme)
	}
	if o.ClientType == "" {
		o.ClientType = defaultClientType
	}
	if o.AccessCookie == "" {
		o.AccessCookie = defaultAccessCookie
	}
	if o.RefreshCookie == "" {
		o.RefreshCookie = defaultRefreshCookie
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if len(o.ExpiredCodes) == 0 {
		o.ExpiredCodes = []string{CodeTokenExpired, CodeTokenMissing}
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	if sessions == nil {
		sessions = session.NewManager(nil)
	}

	c := &Client{
		http:     hc,
		opts:     o,
		base:     base,
		sessions: sessions,
		log:      *logger.Named("api"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	sessions.SetRefresher(refresher{c})
	return c, nil
}

// Sessions returns the manager holding the credential
func (c *Client) Sessions() *session.Manager { return c.sessions }

// BaseURL returns the api root, without a trailing slash
func (c *Client) BaseURL() *url.URL { u := *c.base; return &u }

// AuthHeader returns the headers a request made outside Send needs, such as
// a websocket handshake: the credential plus the client identification
func (c *Client) AuthHeader(ctx context.Context) (http.Header, error) {
	cred, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	r := &http.Request{Header: http.Header{}}
	r.Header.Set("User-Agent", c.opts.UserAgent)
	r.Header.Set(HeaderClientType, c.opts.ClientType)
	c.authorize(r, cred, false)
	return r.Header, nil
}

// WebSocketURL resolves path against the api root with a ws or wss scheme
func (c *Client) WebSocketURL(path string) string {
	u := *c.base
	u.Scheme = "ws"
	if c.base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = u.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	return u.String()
}

// ResponseError turns a failed response obtained outside Send, such as a
// rejected websocket handshake, into the same *StatusError Send returns
func (c *Client) ResponseError(resp *http.Response) error {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	}
	return newStatusError(resp.StatusCode, resp.Header, body, c.opts.ExpiredCodes)
}

// Send performs req with the current credential. If the server rejects the
// session as expired, the session is refreshed once and req is replayed once.
// A failed refresh surfaces as ErrorCodeRefreshFailed, never as the first
// rejection; every other failure is returned as is.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	p, err := req.encode()
	if err != nil {
		return nil, err
	}

	cred, err := c.sessions.Get(ctx)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return nil, err
	}

	resp, err := c.attempt(ctx, req, p, cred, false)
	var se *StatusError
	if err == nil || !errors.As(err, &se) || !se.AuthExpired() {
		return resp, err
	}

	c.log.Debug().Str("method", req.Method).Str("path", req.Path).Str("code", se.Code).Msg("session expired, refreshing")
	next, rerr := c.sessions.Renew(ctx, cred)
	if rerr != nil {
		return nil, perr.Wrap(rerr, perr.ErrorCodeRefreshFailed, "failed to refresh session")
	}
	return c.attempt(ctx, req, p, next, false)
}

// JSON sends req and decodes a successful body into out, which may be nil
func (c *Client) JSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// attempt is exactly one round trip. useRefresh attaches the refresh token
// instead of the access token.
func (c *Client) attempt(ctx context.Context, req Request, p payload, cred session.Credential, useRefresh bool) (*Response, error) {
	hreq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req), p.reader())
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "build %s %s", req.Method, req.Path)
	}
	reqID := c.newID()
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", c.opts.UserAgent)
	hreq.Header.Set(HeaderClientType, c.opts.ClientType)
	hreq.Header.Set(headerRequestID, reqID)
	if p.contentType != "" {
		hreq.Header.Set("Content-Type", p.contentType)
	}
	c.authorize(hreq, cred, useRefresh)

	start := c.now()
	resp, err := c.http.Do(hreq)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "%s %s", req.Method, req.Path)
	}
	defer func() {
		if cerr := drainAndClose(resp.Body); cerr != nil {
			c.log.Debug().Err(cerr).Str("path", req.Path).Msg("api close body failed")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("latency", lat).
		Msg("api http response")

	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "read %s %s", req.Method, req.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, resp.Header, body, c.opts.ExpiredCodes)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) url(req Request) string {
	u := *c.base
	u.Path = u.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String()
}

func (c *Client) authorize(r *http.Request, cred session.Credential, useRefresh bool) {
	switch c.opts.Scheme {
	case SchemeBearer:
		tok := cred.AccessToken
		if useRefresh && cred.RefreshToken != "" {
			tok = cred.RefreshToken
		}
		if tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	default:
		if cred.AccessToken != "" {
			r.AddCookie(&http.Cookie{Name: c.opts.AccessCookie, Value: cred.AccessToken})
		}
		if useRefresh && cred.RefreshToken != "" {
			r.AddCookie(&http.Cookie{Name: c.opts.RefreshCookie, Value: cred.RefreshToken})
		}
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}
