package middleware

import (
	"net/http"

	"stridekit/internal/platform/logger"
	pnet "stridekit/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	// Parse returns the user id behind the request's credential or an error
	Parse(r *http.Request) (userID string, err error)
}

// ErrorWriter renders a rejected request
type ErrorWriter func(w http.ResponseWriter, status int, body pnet.ErrorBody)

// Auth rejects requests the port cannot resolve and puts the user id on the
// context of the rest. A nil port lets everything through.
func Auth(p AuthPort, write ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), uid)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
