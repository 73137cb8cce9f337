package fakeapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	phttp "stridekit/internal/platform/net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

const writeTimeout = 5 * time.Second

// event is the frame pushed to live sockets
type event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type hub struct {
	mu    sync.Mutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func newHub() *hub { return &hub{conns: map[int64]map[*websocket.Conn]struct{}{}} }

func (h *hub) add(uid int64, c *websocket.Conn) {
	h.mu.Lock()
	if h.conns[uid] == nil {
		h.conns[uid] = map[*websocket.Conn]struct{}{}
	}
	h.conns[uid][c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(uid int64, c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns[uid], c)
	if len(h.conns[uid]) == 0 {
		delete(h.conns, uid)
	}
	h.mu.Unlock()
}

func (h *hub) snapshot(uid int64) []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*websocket.Conn, 0, len(h.conns[uid]))
	for c := range h.conns[uid] {
		out = append(out, c)
	}
	return out
}

func (h *hub) count(uid int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[uid])
}

func (h *hub) publish(uid int64, ev event) int {
	sent := 0
	for _, c := range h.snapshot(uid) {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := wsjson.Write(ctx, c, ev)
		cancel()
		if err != nil {
			logger.Named("fakeapi").Debug().Err(err).Int64("user_id", uid).Msg("live write failed")
			continue
		}
		sent++
	}
	return sent
}

func (h *hub) closeUser(uid int64, reason string) {
	for _, c := range h.snapshot(uid) {
		_ = c.Close(websocket.StatusNormalClosure, reason)
	}
}

func (h *hub) closeAll(reason string) {
	h.mu.Lock()
	var all []*websocket.Conn
	for _, set := range h.conns {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()
	for _, c := range all {
		_ = c.Close(websocket.StatusGoingAway, reason)
	}
}

// live upgrades GET /ws/{user_id} for the authenticated owner of user_id and
// holds the socket until either side closes it
// @Summary Websocket of live events for the authenticated user
// @Tags Live
// @Security BearerAuth
// @Security CookieAuth
// @Param user_id path int true "User id"
// @Success 101
// @Failure 403 {object} pnet.ErrorBody
// @Router /ws/{user_id} [get]
func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	uid := caller(r)
	if chi.URLParam(r, "user_id") != strconv.FormatInt(uid, 10) {
		phttp.RespondError(w, r, perr.Forbiddenf("live channel belongs to another user"))
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.opts.CORSOrigins})
	if err != nil {
		// Accept has already written the failure
		s.log.Debug().Err(err).Int64("user_id", uid).Msg("live upgrade failed")
		return
	}
	s.hub.add(uid, c)
	defer s.hub.remove(uid, c)

	s.log.Debug().Int64("user_id", uid).Msg("live connected")
	// clients only listen; CloseRead answers pings and close frames for us
	ctx := c.CloseRead(context.WithoutCancel(r.Context()))
	<-ctx.Done()
	_ = c.CloseNow()
	s.log.Debug().Int64("user_id", uid).Msg("live disconnected")
}
