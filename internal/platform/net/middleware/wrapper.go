package middleware

import (
	"net/http"
	"time"

	pstrings "stridekit/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// HealthPath answers 200 before auth or logging sees the request
const HealthPath = "/healthz"

// Chain is middleware in the order it wraps, outermost first
type Chain []func(http.Handler) http.Handler

// Then wraps h with every middleware of c
func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors. The default headers include X-Client-Type so a
// browser client can identify itself on credentialed requests.
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Client-Type",
			"X-Request-ID",
		}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID", "WWW-Authenticate"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

// Defaults is the fake api's baseline chain. Request ids come from chi and
// are echoed back so a client error can be matched to the access log line.
func Defaults() Chain {
	return Chain{
		chimw.Heartbeat(HealthPath),
		chimw.RealIP,
		chimw.RequestID,
		echoRequestID,
		RecoverJSON,
		AccessLogZerolog(AccessLogOptions{Slow: 500 * time.Millisecond}),
		chimw.NoCache,
	}
}

func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
