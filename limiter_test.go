package minipress

import (
	"testing"
	"time"
)

func testLimiter(max int, window time.Duration) (*LoginLimiter, *time.Time) {
	l := NewLoginLimiter(max, window)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	l, _ := testLimiter(2, time.Minute)
	ip := "203.0.113.10"

	if !l.Check(ip) {
		t.Fatal("fresh ip should be allowed")
	}
	l.Record(ip)
	if !l.Check(ip) {
		t.Fatal("one failure should still be allowed")
	}
	l.Record(ip)
	if l.Check(ip) {
		t.Fatal("max failures reached, ip should be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	l, clock := testLimiter(1, time.Minute)
	ip := "203.0.113.20"

	l.Record(ip)
	if l.Check(ip) {
		t.Fatal("ip should be blocked inside the window")
	}

	*clock = clock.Add(time.Minute + time.Second)
	if !l.Check(ip) {
		t.Fatal("budget should reset after the window expires")
	}
	l.Record(ip)
	if l.Check(ip) {
		t.Fatal("the new window should count failures again")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l, _ := testLimiter(1, time.Minute)

	l.Record("203.0.113.30")
	if l.Check("203.0.113.30") {
		t.Fatal("first ip should be blocked")
	}
	if !l.Check("203.0.113.31") {
		t.Fatal("second ip must not share the first ip's budget")
	}
}

func TestLoginLimiterSuccessConsumesNothing(t *testing.T) {
	l, _ := testLimiter(3, time.Minute)
	ip := "203.0.113.40"

	for i := 0; i < 10; i++ {
		if !l.Check(ip) {
			t.Fatalf("Check alone must never consume budget (iteration %d)", i)
		}
	}
}

func TestLoginLimiterGC(t *testing.T) {
	l, clock := testLimiter(1, time.Minute)

	l.Record("203.0.113.50")
	l.Record("203.0.113.51")
	*clock = clock.Add(3 * time.Minute)

	// Any Check past the window sweeps out expired entries.
	l.Check("203.0.113.99")
	l.mu.Lock()
	n := len(l.ips)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("expired windows not collected, %d entries left", n)
	}
}
