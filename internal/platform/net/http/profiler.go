package http

import (
	stdhttp "net/http"
	"strings"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix, e.g. "/debug" gives /debug/pprof/.
// Nothing is mounted unless enabled.
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = strings.TrimRight(prefix, "/")
	h := stdhttp.StripPrefix(prefix, mw.Profiler())
	r.Handle(prefix, h)
	r.Handle(prefix+"/*", h)
}
