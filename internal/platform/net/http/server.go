package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"stridekit/internal/platform/config"
	"stridekit/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server serves a chi mux. Hijacked connections such as websockets are
// invisible to Shutdown, so their owners register an OnShutdown hook.
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer listens on ADDR (default ":8087"); READ_HEADER_TIMEOUT and
// IDLE_TIMEOUT tune the listener. opts see the mux before anything else.
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("ADDR", ":8087")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			IdleTimeout:       cfg.MayDuration("IDLE_TIMEOUT", 2*time.Minute),
		},
	}
}

// OnShutdown runs fn when a graceful shutdown starts
func (s *Server) OnShutdown(fn func()) { s.srv.RegisterOnShutdown(fn) }

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router {
	return AdaptChi(s.mux)
}

// Handler exposes the mux, e.g. for httptest.NewServer
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx ends or the listener fails; a cancelled ctx shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutCtx); err != nil {
			return err
		}
		<-errc
		log.Info().Msg("http stopped")
		return nil
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
