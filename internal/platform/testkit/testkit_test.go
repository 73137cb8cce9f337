package testkit

import (
	"testing"
	"time"
)

var seam = func() string { return "real" }

func TestMustPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
}

func TestMustContain(t *testing.T) {
	MustContain(t, `{"level":"info","message":"logged in"}`, "logged in")
}

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Serial(t)
		Swap(t, &seam, func() string { return "fake" })
		if got := seam(); got != "fake" {
			t.Fatalf("swap not applied, got %q", got)
		}
	})
	if got := seam(); got != "real" {
		t.Fatalf("swap not restored, got %q", got)
	}
}

func TestClock(t *testing.T) {
	start := time.Date(2025, time.March, 30, 0, 30, 0, 0, time.UTC)
	c := NewClock(start)
	if !c.Now().Equal(start) {
		t.Fatalf("now = %v, want %v", c.Now(), start)
	}
	if got := c.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance = %v", got)
	}

	var zero Clock
	if !zero.Now().Equal(time.Unix(0, 0)) {
		t.Fatalf("zero clock = %v, want the epoch", zero.Now())
	}
}
