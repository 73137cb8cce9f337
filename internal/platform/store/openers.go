package store

import (
	"context"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 6
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// sleep is swapped in tests
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// openPG opens the pool and publishes the adapter on s only once a ping
// succeeds. Only failures that may clear up on their own are retried.
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse postgres url")
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	var lastErr error
	backoff := backoffStart
	for i := range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Pool.Ping(pctx)
		cancel()
		if lastErr == nil {
			a := newPGAdapter(p)
			s.PG = a
			return a, nil
		}
		lastErr = perr.FromPostgres(lastErr, "ping postgres")
		if !perr.Retryable(lastErr) {
			p.Close()
			return nil, lastErr
		}
		s.Log.Debug().Err(lastErr).Int("attempt", i+1).Msg("postgres not ready")
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			p.Close()
			return nil, err
		}
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeUnavailable, "postgres ping failed after %d attempts", attempts)
}
