package pg

import (
	"context"
	"strings"

	"stridekit/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement.
// Args can hold session tokens, so tracers log only how many there were.
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements regardless of the root level; slow ones at warn
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Int("nargs", len(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds every whitespace run into a single space
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\n', '\t', '\r':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
