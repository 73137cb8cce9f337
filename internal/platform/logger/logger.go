// Package logger is the zerolog root shared by the client, the session
// manager and the fake api, plus request-scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"stridekit/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string // zerolog level name, "warning" is accepted
	Format  string // console or json
	Service string
	Writer  io.Writer // default os.Stderr, stdout carries command output
	Caller  bool
	Fields  map[string]string
}

// FromEnv reads LOG_* through the logging-free raw view, config imports this package
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "info"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: rc.Get("SERVICE", ""),
		Caller:  rc.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// New builds a logger from opt without touching the process root
func New(opt Options) Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	b := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		b = b.Str("service", opt.Service)
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b = b.Str("build", bi.Main.Version)
	}
	for k, v := range opt.Fields {
		b = b.Str(k, v)
	}
	if opt.Caller {
		b = b.Caller()
	}
	return b.Logger()
}

// Init installs the root logger; only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// parseLevel accepts zerolog level names plus "warning"; anything else is info
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type scopeKey struct{}

type scope struct{ requestID, userID string }

// WithRequest annotates ctx with the request id and user id; empty values
// keep whatever an outer scope set
func WithRequest(ctx context.Context, reqID, userID string) context.Context {
	s, _ := ctx.Value(scopeKey{}).(scope)
	if reqID != "" {
		s.requestID = reqID
	}
	if userID != "" {
		s.userID = userID
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// C returns a child of the root carrying the request fields of ctx
func C(ctx context.Context) *Logger {
	s, ok := ctx.Value(scopeKey{}).(scope)
	if !ok {
		return Get()
	}
	b := Get().With()
	if s.requestID != "" {
		b = b.Str("request_id", s.requestID)
	}
	if s.userID != "" {
		b = b.Str("user_id", s.userID)
	}
	l := b.Logger()
	return &l
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
