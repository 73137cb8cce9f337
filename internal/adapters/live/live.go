// Package live keeps the per-user websocket open while a session exists and
// hands every server message to a handler.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"stridekit/internal/adapters/api"
	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	"stridekit/internal/session"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const dialTimeout = 10 * time.Second

// Event is one message pushed by the server
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler receives events on the reader goroutine, one at a time.
// It may call Close or Open; those return without waiting for the
// running handler, and no further event is delivered on that socket.
type Handler func(ctx context.Context, ev Event)

// Client is what the channel needs from the api client
type Client interface {
	AuthHeader(ctx context.Context) (http.Header, error)
	WebSocketURL(path string) string
	ResponseError(resp *http.Response) error
	Refresh(ctx context.Context) (session.Credential, error)
}

// Option configures a Channel
type Option func(*Channel)

// WithHTTPClient sets the client used for the handshake
func WithHTTPClient(hc *http.Client) Option { return func(c *Channel) { c.hc = hc } }

// Channel is at most one open socket, bound to one user
type Channel struct {
	client  Client
	handler Handler
	hc      *http.Client
	log     logger.Logger

	// open serializes Open and Close; mu guards the fields below
	open sync.Mutex
	mu   sync.Mutex
	conn *websocket.Conn
	user string
	rd   *reader
}

// reader is the goroutine draining one socket
type reader struct {
	stop context.CancelFunc
	done chan struct{}
	// set while the handler runs, a shutdown from inside it cannot wait on done
	dispatching atomic.Bool
}

// New returns a closed channel. A nil handler drops events.
func New(c Client, h Handler, opts ...Option) *Channel {
	if h == nil {
		h = func(context.Context, Event) {}
	}
	ch := &Channel{client: c, handler: h, log: *logger.Named("live")}
	for _, o := range opts {
		o(ch)
	}
	return ch
}

// Open connects to the socket of userID. Opening the user already connected
// is a no-op; a socket of another user is closed first. A handshake rejected
// because the session expired is retried once after a refresh.
func (ch *Channel) Open(ctx context.Context, userID string) error {
	if userID == "" {
		return perr.WithField(perr.InvalidArgf("user id is required"), "user_id")
	}
	ch.open.Lock()
	defer ch.open.Unlock()

	ch.mu.Lock()
	same := ch.conn != nil && ch.user == userID
	ch.mu.Unlock()
	if same {
		return nil
	}
	ch.shutdown("switching user")

	conn, err := ch.dial(ctx, userID)
	if err != nil {
		return err
	}

	rctx, stop := context.WithCancel(context.Background())
	rd := &reader{stop: stop, done: make(chan struct{})}
	ch.mu.Lock()
	ch.conn, ch.user, ch.rd = conn, userID, rd
	ch.mu.Unlock()

	go ch.read(rctx, conn, userID, rd)
	ch.log.Info().Str("user_id", userID).Msg("live channel open")
	return nil
}

// Close closes the socket, if any, and waits for the reader to stop.
// Called from the Handler it does not wait for that handler to return.
func (ch *Channel) Close() {
	ch.open.Lock()
	defer ch.open.Unlock()
	ch.shutdown("closing")
}

// Connected reports whether a socket is open
func (ch *Channel) Connected() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.conn != nil
}

// User returns the user of the open socket, or ""
func (ch *Channel) User() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.user
}

// Attach opens the channel on every login and closes it on logout
func (ch *Channel) Attach(m *session.Manager) {
	m.Subscribe(func(ctx context.Context, ev session.Event, c session.Credential) {
		switch ev {
		case session.EventLogin:
			if c.UserID == "" {
				return
			}
			if err := ch.Open(ctx, c.UserID); err != nil {
				logger.C(ctx).Warn().Err(err).Str("user_id", c.UserID).Msg("live channel open failed")
			}
		case session.EventLogout:
			ch.Close()
		}
	})
}

// shutdown expects ch.open held
func (ch *Channel) shutdown(reason string) {
	ch.mu.Lock()
	conn, rd := ch.conn, ch.rd
	ch.conn, ch.user, ch.rd = nil, "", nil
	ch.mu.Unlock()
	if conn == nil {
		return
	}
	if rd.dispatching.Load() {
		// the reader is parked in the handler, possibly this very call
		rd.stop()
		_ = conn.CloseNow()
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, reason)
	rd.stop()
	<-rd.done
}

func (ch *Channel) dial(ctx context.Context, userID string) (*websocket.Conn, error) {
	conn, err := ch.handshake(ctx, userID)
	var se *api.StatusError
	if err == nil || !errors.As(err, &se) || !se.AuthExpired() {
		return conn, err
	}
	ch.log.Debug().Str("user_id", userID).Msg("live handshake rejected, refreshing session")
	if _, err := ch.client.Refresh(ctx); err != nil {
		return nil, err
	}
	return ch.handshake(ctx, userID)
}

func (ch *Channel) handshake(ctx context.Context, userID string) (*websocket.Conn, error) {
	h, err := ch.client.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, resp, err := websocket.Dial(dctx, ch.client.WebSocketURL("/ws/"+userID), &websocket.DialOptions{
		HTTPClient: ch.hc,
		HTTPHeader: h,
	})
	if err == nil {
		return conn, nil
	}
	if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
		defer resp.Body.Close()
		return nil, ch.client.ResponseError(resp)
	}
	return nil, perr.Wrapf(err, perr.ErrorCodeNetwork, "dial live channel of user %s", userID)
}

func (ch *Channel) read(ctx context.Context, conn *websocket.Conn, userID string, rd *reader) {
	defer close(rd.done)
	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			ch.detach(conn)
			status := websocket.CloseStatus(err)
			if ctx.Err() == nil && status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				ch.log.Warn().Err(err).Str("user_id", userID).Msg("live channel dropped")
			} else {
				ch.log.Debug().Str("user_id", userID).Int("status", int(status)).Msg("live channel closed")
			}
			return
		}
		rd.dispatching.Store(true)
		ch.handler(ctx, ev)
		rd.dispatching.Store(false)
	}
}

// detach forgets conn when the server ended it
func (ch *Channel) detach(conn *websocket.Conn) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.conn != conn {
		return
	}
	ch.rd.stop()
	ch.conn, ch.user, ch.rd = nil, "", nil
	_ = conn.CloseNow()
}
