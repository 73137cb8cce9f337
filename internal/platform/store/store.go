// Package store is the narrow sql surface the session backends run against
package store

import (
	"context"
	"errors"
	"fmt"

	"stridekit/internal/platform/logger"
)

// Store holds the optional backends; the zero value has none
type Store struct {
	Log logger.Logger

	// PG is nil unless Config.PG.Enabled
	PG TxRunner
}

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger the backends trace through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Row is the single-row scan contract
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repositories use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner adds transactions to RowQuerier
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open builds a Store with the backends cfg enables
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Named("store")}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if cfg.PG.Enabled {
		if _, err := openPG(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Guard pings every backend that can be pinged
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	return nil
}

// Close releases every backend; nil ones are skipped
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
