package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	"stridekit/internal/session"
)

// API paths for the session lifecycle
const (
	PathToken   = "/token"
	PathRefresh = "/refresh"
	PathLogout  = "/logout"
)

// tokenBody is what /token and /refresh return when the server hands tokens
// to non-browser clients; cookie sessions may return none of it
type tokenBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       any    `json:"user_id"`
}

// refresher is the network half of session refresh; the manager coalesces calls to it
type refresher struct{ c *Client }

// Refresh posts to /refresh with the current credential and no body
func (r refresher) Refresh(ctx context.Context, cur session.Credential) (session.Credential, error) {
	req := Request{Method: http.MethodPost, Path: PathRefresh}
	resp, err := r.c.attempt(ctx, req, payload{}, cur, true)
	if err != nil {
		return session.Credential{}, err
	}
	next, err := r.c.credentialFrom(resp)
	if err != nil {
		return session.Credential{}, perr.Wrap(err, perr.ErrorCodeRefreshFailed, "refresh response")
	}
	return next, nil
}

// Refresh renews the session now. Concurrent callers share one /refresh call.
func (c *Client) Refresh(ctx context.Context) (session.Credential, error) {
	next, err := c.sessions.Refresh(ctx)
	if err != nil {
		return session.Credential{}, perr.Wrap(err, perr.ErrorCodeRefreshFailed, "failed to refresh session")
	}
	return next, nil
}

// Login exchanges username and password for a session and stores it.
// The user id is looked up when the token reply does not carry it, so
// listeners of the login event can open per-user channels.
func (c *Client) Login(ctx context.Context, username, password string) (session.Credential, error) {
	if username == "" || password == "" {
		return session.Credential{}, perr.InvalidArgf("username and password are required")
	}
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	req := Request{Method: http.MethodPost, Path: PathToken, Body: form, Kind: BodyForm}
	p, err := req.encode()
	if err != nil {
		return session.Credential{}, err
	}
	resp, err := c.attempt(ctx, req, p, session.Credential{}, false)
	if err != nil {
		return session.Credential{}, err
	}
	cred, err := c.credentialFrom(resp)
	if err != nil {
		return session.Credential{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, "login response")
	}

	if cred.UserID == "" {
		var me User
		mreq := Request{Method: http.MethodGet, Path: PathMe}
		mresp, err := c.attempt(ctx, mreq, payload{}, cred, false)
		if err != nil {
			return session.Credential{}, perr.Wrap(err, perr.CodeOf(err), "look up logged in user")
		}
		if err := mresp.Decode(&me); err != nil {
			return session.Credential{}, err
		}
		cred.UserID = strconv.FormatInt(me.ID, 10)
	}

	if err := c.sessions.Set(ctx, cred); err != nil {
		return session.Credential{}, err
	}
	c.log.Info().Str("user_id", cred.UserID).Str("access", logger.Fingerprint(cred.AccessToken)).Time("expires_at", cred.ExpiresAt).Msg("logged in")
	return cred, nil
}

// Logout tells the server to end the session and forgets it locally.
// The local session is cleared even when the server call fails; that
// failure is still returned.
func (c *Client) Logout(ctx context.Context) error {
	_, serr := c.Send(ctx, Request{Method: http.MethodPost, Path: PathLogout})
	if serr != nil {
		c.log.Warn().Err(serr).Msg("server logout failed, clearing local session anyway")
	}
	if err := c.sessions.Clear(ctx); err != nil {
		return errors.Join(err, serr)
	}
	return serr
}

// credentialFrom reads tokens from the JSON body, falling back to Set-Cookie
func (c *Client) credentialFrom(resp *Response) (session.Credential, error) {
	var tb tokenBody
	if err := resp.Decode(&tb); err != nil {
		// cookie-only replies may carry a non-token body
		tb = tokenBody{}
	}
	cred := session.Credential{
		AccessToken:  tb.AccessToken,
		RefreshToken: tb.RefreshToken,
		UserID:       userIDString(tb.UserID),
	}
	if tb.ExpiresIn > 0 {
		cred.ExpiresAt = c.now().Add(time.Duration(tb.ExpiresIn) * time.Second).UTC()
	}

	hr := http.Response{Header: resp.Header}
	for _, ck := range hr.Cookies() {
		switch ck.Name {
		case c.opts.AccessCookie:
			if cred.AccessToken == "" {
				cred.AccessToken = ck.Value
				if cred.ExpiresAt.IsZero() {
					cred.ExpiresAt = cookieExpiry(ck, c.now())
				}
			}
		case c.opts.RefreshCookie:
			if cred.RefreshToken == "" {
				cred.RefreshToken = ck.Value
			}
		}
	}
	if cred.Empty() {
		return session.Credential{}, perr.New(perr.ErrorCodeUnauthorized, "no access token in reply")
	}
	return cred, nil
}

func cookieExpiry(ck *http.Cookie, now time.Time) time.Time {
	switch {
	case ck.MaxAge > 0:
		return now.Add(time.Duration(ck.MaxAge) * time.Second).UTC()
	case !ck.Expires.IsZero():
		return ck.Expires.UTC()
	}
	return time.Time{}
}

// userIDString accepts numeric or string ids
func userIDString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	}
	return ""
}
