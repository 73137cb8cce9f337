package net_test

import (
	"errors"
	"net/http"
	"testing"

	perr "stridekit/internal/platform/errors"
	pnet "stridekit/internal/platform/net"
)

func TestError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{"nil", nil, http.StatusOK, "", ""},
		{"not found", perr.NotFoundf("activity 7"), http.StatusNotFound, "not_found", "activity 7"},
		{"reason wins", perr.WithReason(perr.Unauthorizedf("session expired"), "token_expired"), http.StatusUnauthorized, "token_expired", "session expired"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "unknown", "boom"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, body := pnet.Error(c.err, "req-9")
			if status != c.wantStatus {
				t.Fatalf("status %d want %d", status, c.wantStatus)
			}
			if body.Code != c.wantCode || body.Detail != c.wantDetail {
				t.Fatalf("body = %+v", body)
			}
			if c.err != nil && body.RequestID != "req-9" {
				t.Fatalf("request id %q", body.RequestID)
			}
		})
	}

	_, body := pnet.Error(perr.WithField(perr.InvalidArgf("bad"), "first_day"), "")
	if body.Field != "first_day" {
		t.Fatalf("field = %q", body.Field)
	}
}
