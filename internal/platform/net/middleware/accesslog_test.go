package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stridekit/internal/platform/net/middleware"
)

func TestAccessLogZerolog_LeavesTheReplyAlone(t *testing.T) {
	cases := []struct {
		name   string
		opt    middleware.AccessLogOptions
		h      http.HandlerFunc
		status int
		body   string
	}{
		{
			name: "explicit status",
			h: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, `{"id":7}`)
			},
			status: http.StatusCreated, body: `{"id":7}`,
		},
		{
			name:   "implicit 200 across writes",
			h:      func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("page ")); _, _ = w.Write([]byte("one")) },
			status: http.StatusOK, body: "page one",
		},
		{
			name:   "slow request at warn",
			opt:    middleware.AccessLogOptions{Slow: time.Nanosecond},
			h:      func(w http.ResponseWriter, _ *http.Request) { time.Sleep(50 * time.Microsecond); _, _ = io.WriteString(w, "late") },
			status: http.StatusOK, body: "late",
		},
		{
			name:   "expired session",
			h:      func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "token_expired", http.StatusUnauthorized) },
			status: http.StatusUnauthorized, body: "token_expired\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			middleware.AccessLogZerolog(tc.opt)(tc.h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/activities", nil))
			if rr.Code != tc.status || rr.Body.String() != tc.body {
				t.Fatalf("got %d %q, want %d %q", rr.Code, rr.Body.String(), tc.status, tc.body)
			}
		})
	}
}

func TestAccessLogZerolog_HijackReportsUnsupportedWriter(t *testing.T) {
	mw := middleware.AccessLogZerolog(middleware.AccessLogOptions{})

	var hijackErr error
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("access log writer must expose Hijack")
		}
		_, _, hijackErr = hj.Hijack()
	})

	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws/1", nil))
	if hijackErr == nil {
		t.Fatal("recorder cannot hijack; expected an error")
	}
}
