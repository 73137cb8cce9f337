package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"stridekit/internal/adapters/api"
	perr "stridekit/internal/platform/errors"
	pnet "stridekit/internal/platform/net"
	phttp "stridekit/internal/platform/net/http"

	"github.com/google/uuid"
)

// Body codes for rejections that must not trigger a refresh
const (
	CodeInvalidToken        = "invalid_token"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeRefreshTokenInvalid = "refresh_token_invalid"
	CodeNotAuthenticated    = "not_authenticated"
)

type grant struct {
	userID     int64
	access     string
	refresh    string
	accessExp  time.Time
	refreshExp time.Time
}

// tokenReply mirrors what the platform returns from /token and /refresh.
// Browser clients get only the user id and lifetime; the tokens ride in cookies.
type tokenReply struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       int64  `json:"user_id"`
}

// Parse implements middleware.AuthPort. A missing token and an expired one
// carry the codes clients renew on; anything else is a plain 401.
func (s *Server) Parse(r *http.Request) (string, error) {
	tok := credential(r, s.opts.AccessCookie)
	if tok == "" {
		return "", perr.WithReason(perr.Unauthorizedf("not authenticated"), api.CodeTokenMissing)
	}
	s.mu.Lock()
	g, ok := s.grants[tok]
	var exp time.Time
	var uid int64
	if ok {
		exp, uid = g.accessExp, g.userID
	}
	s.mu.Unlock()

	switch {
	case !ok:
		return "", perr.WithReason(perr.Unauthorizedf("invalid token"), CodeInvalidToken)
	case !s.opts.Now().Before(exp):
		return "", perr.WithReason(perr.Unauthorizedf("token expired"), api.CodeTokenExpired)
	}
	return strconv.FormatInt(uid, 10), nil
}

// writeAuthError renders Auth rejections according to the configured signal
func (s *Server) writeAuthError(w http.ResponseWriter, status int, body pnet.ErrorBody) {
	if body.Code == api.CodeTokenExpired && s.opts.Signal != SignalCode {
		w.Header().Set("WWW-Authenticate", `Bearer realm="stridekit", error="invalid_token", error_description="`+body.Detail+`"`)
	}
	if s.opts.Signal == SignalChallenge && (body.Code == api.CodeTokenExpired || body.Code == api.CodeTokenMissing) {
		if body.Code == api.CodeTokenMissing {
			w.Header().Set("WWW-Authenticate", `Bearer realm="stridekit"`)
		}
		body.Code = CodeNotAuthenticated
	}
	phttp.WriteError(w, status, body)
}

// token is the password grant
// @Summary Password grant
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} tokenReply
// @Failure 401 {object} pnet.ErrorBody "invalid_credentials"
// @Router /token [post]
func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		phttp.RespondError(w, r, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid form body"))
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		phttp.RespondError(w, r, perr.WithField(perr.InvalidArgf("unsupported grant type %q", gt), "grant_type"))
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[r.PostForm.Get("username")]
	s.mu.Unlock()
	if !ok || acc.Password != r.PostForm.Get("password") {
		phttp.RespondError(w, r, perr.WithReason(perr.Unauthorizedf("incorrect username or password"), CodeInvalidCredentials))
		return
	}

	g := s.issue(acc.ID)
	s.log.Debug().Int64("user_id", acc.ID).Msg("fakeapi login")
	s.replyTokens(w, r, g)
}

// renew rotates the access token of a valid refresh token
// @Summary Rotate the access token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Security CookieAuth
// @Success 200 {object} tokenReply
// @Failure 401 {object} pnet.ErrorBody "refresh_token_invalid"
// @Router /refresh [post]
func (s *Server) renew(w http.ResponseWriter, r *http.Request) {
	if s.failRefresh.Load() {
		phttp.RespondError(w, r, perr.WithReason(perr.Unauthorizedf("refresh rejected"), CodeRefreshTokenInvalid))
		return
	}
	tok := credential(r, s.opts.RefreshCookie)
	now := s.opts.Now()

	s.mu.Lock()
	g, ok := s.refresh[tok]
	if !ok || tok == "" || !now.Before(g.refreshExp) {
		s.mu.Unlock()
		phttp.RespondError(w, r, perr.WithReason(perr.Unauthorizedf("invalid or expired refresh token"), CodeRefreshTokenInvalid))
		return
	}
	// the old access token stays known so late requests still read as expired
	next := &grant{
		userID:     g.userID,
		access:     uuid.NewString(),
		refresh:    g.refresh,
		accessExp:  now.Add(s.opts.AccessTTL),
		refreshExp: g.refreshExp,
	}
	s.grants[next.access] = next
	s.refresh[next.refresh] = next
	s.mu.Unlock()

	s.replyTokens(w, r, next)
}

// logout revokes whatever tokens the caller presents and drops its sockets
// @Summary Revoke the presented tokens and drop live sockets
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /logout [post]
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	access := credential(r, s.opts.AccessCookie)
	refresh := cookie(r, s.opts.RefreshCookie)

	var uid int64
	s.mu.Lock()
	for _, tok := range []string{access, refresh} {
		if g, ok := s.grants[tok]; ok {
			uid = g.userID
			delete(s.refresh, g.refresh)
		}
		if g, ok := s.refresh[tok]; ok {
			uid = g.userID
			delete(s.refresh, tok)
		}
		delete(s.grants, tok)
	}
	s.mu.Unlock()

	for _, name := range []string{s.opts.AccessCookie, s.opts.RefreshCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	if uid != 0 {
		s.hub.closeUser(uid, "logged out")
	}
	phttp.RespondOK(w, r, map[string]string{"message": "logout successful"})
}

func (s *Server) issue(userID int64) *grant {
	now := s.opts.Now()
	g := &grant{
		userID:     userID,
		access:     uuid.NewString(),
		refresh:    uuid.NewString(),
		accessExp:  now.Add(s.opts.AccessTTL),
		refreshExp: now.Add(s.opts.RefreshTTL),
	}
	s.mu.Lock()
	s.grants[g.access] = g
	s.refresh[g.refresh] = g
	s.mu.Unlock()
	return g
}

func (s *Server) replyTokens(w http.ResponseWriter, r *http.Request, g *grant) {
	http.SetCookie(w, &http.Cookie{
		Name: s.opts.AccessCookie, Value: g.access, Path: "/",
		MaxAge: int(s.opts.AccessTTL / time.Second), HttpOnly: true, SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: s.opts.RefreshCookie, Value: g.refresh, Path: "/",
		MaxAge: int(s.opts.RefreshTTL / time.Second), HttpOnly: true, SameSite: http.SameSiteStrictMode,
	})

	reply := tokenReply{ExpiresIn: int64(s.opts.AccessTTL / time.Second), UserID: g.userID}
	if r.Header.Get(api.HeaderClientType) != "web" {
		reply.AccessToken, reply.RefreshToken, reply.TokenType = g.access, g.refresh, "bearer"
	}
	phttp.RespondOK(w, r, reply)
}

// credential reads the named cookie, falling back to a bearer token
func credential(r *http.Request, cookieName string) string {
	if v := cookie(r, cookieName); v != "" {
		return v
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func cookie(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}
