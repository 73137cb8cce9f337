package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "stridekit/internal/platform/errors"
	phttp "stridekit/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type gearIn struct {
	Nickname string `json:"nickname" validate:"required"`
}

func sugarRouter() phttp.Router {
	r := phttp.AdaptChi(chi.NewRouter())
	phttp.GetJSON(r, "/me", func(_ *http.Request) (any, error) {
		return map[string]string{"username": "demo"}, nil
	})
	phttp.GetJSON(r, "/missing", func(_ *http.Request) (any, error) {
		return nil, perr.NotFoundf("activity not found")
	})
	phttp.PostJSON(r, "/gear", func(_ *http.Request, in gearIn) (any, error) {
		if in.Nickname == "boom" {
			return nil, errors.New("boom")
		}
		return map[string]string{"nickname": in.Nickname}, nil
	})
	return r
}

func TestSugar(t *testing.T) {
	t.Parallel()
	r := sugarRouter()

	cases := []struct {
		name, method, path, body string
		status                   int
		contains                 string
	}{
		{"get ok", "GET", "/me", "", 200, `"username":"demo"`},
		{"get error", "GET", "/missing", "", 404, `"code":"not_found"`},
		{"post created", "POST", "/gear", `{"nickname":"Tarmac"}`, 201, `"nickname":"Tarmac"`},
		{"post bad json", "POST", "/gear", `{`, 400, `"code":"json"`},
		{"post invalid", "POST", "/gear", `{}`, 400, `"field":"nickname"`},
		{"post handler error", "POST", "/gear", `{"nickname":"boom"}`, 500, "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.Mux().ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.contains) {
				t.Fatalf("body %q missing %q", rec.Body.String(), tc.contains)
			}
		})
	}
}

func TestMountProfiler(t *testing.T) {
	t.Parallel()

	on := phttp.AdaptChi(chi.NewRouter())
	phttp.MountProfiler(on, "/debug/", true)
	for _, p := range []string{"/debug/pprof/", "/debug/pprof/cmdline"} {
		rec := httptest.NewRecorder()
		on.Mux().ServeHTTP(rec, httptest.NewRequest("GET", p, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", p, rec.Code)
		}
	}

	off := phttp.AdaptChi(chi.NewRouter())
	phttp.MountProfiler(off, "/debug", false)
	rec := httptest.NewRecorder()
	off.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/debug/pprof/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled profiler answered %d", rec.Code)
	}
}
