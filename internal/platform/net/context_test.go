package net_test

import (
	"context"
	"testing"

	pnet "stridekit/internal/platform/net"
)

func TestRequestAndUserIDs(t *testing.T) {
	base := context.Background()

	t.Run("sets both ids", func(t *testing.T) {
		ctx := pnet.WithUser(pnet.WithRequestID(base, "req-123"), "42")
		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
		if got := pnet.UserID(ctx); got != "42" {
			t.Fatalf("UserID got %q want %q", got, "42")
		}
	})

	t.Run("empty ids leave ctx unchanged", func(t *testing.T) {
		ctx := pnet.WithUser(pnet.WithRequestID(base, ""), "")
		if ctx != base {
			t.Fatalf("expected ctx to be unchanged when ids are empty")
		}
		if pnet.RequestID(ctx) != "" || pnet.UserID(ctx) != "" {
			t.Fatalf("getters should be empty")
		}
	})
}
