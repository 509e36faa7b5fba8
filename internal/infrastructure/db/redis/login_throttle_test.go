package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(ctx, "a@example.com")
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allow, got ok=%v err=%v", i, ok, err)
		}
		if err := th.RecordFailure(ctx, "a@example.com"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	ok, err := th.Allow(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("expected attempts to be blocked")
	}

	other, _ := th.Allow(ctx, "b@example.com")
	if !other {
		t.Fatalf("throttle must be per email")
	}
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	ctx := context.Background()
	th, mr := newTestThrottle(t, 1, time.Minute)

	_ = th.RecordFailure(ctx, "a@example.com")
	if ok, _ := th.Allow(ctx, "a@example.com"); ok {
		t.Fatalf("expected block inside window")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := th.Allow(ctx, "a@example.com"); !ok {
		t.Fatalf("expected allow after window expiry")
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t, 1, time.Minute)

	_ = th.RecordFailure(ctx, "a@example.com")
	if err := th.Reset(ctx, "a@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := th.Allow(ctx, "a@example.com"); !ok {
		t.Fatalf("expected allow after reset")
	}
}

func TestLoginThrottle_BackendDown(t *testing.T) {
	th, mr := newTestThrottle(t, 1, time.Minute)
	mr.Close()

	if _, err := th.Allow(context.Background(), "a@example.com"); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

func TestLoginThrottle_CounterAlwaysExpires(t *testing.T) {
	ctx := context.Background()
	th, mr := newTestThrottle(t, 5, time.Minute)
	key := "login_fail:a@example.com"

	for i := 0; i < 3; i++ {
		if err := th.RecordFailure(ctx, "a@example.com"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
		if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
			t.Fatalf("failure %d: expected ttl within window, got %v", i+1, ttl)
		}
	}
	if got, _ := mr.Get(key); got != "3" {
		t.Fatalf("expected count 3, got %q", got)
	}
}

func TestLoginThrottle_RepairsCounterWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	th, mr := newTestThrottle(t, 5, time.Minute)
	key := "login_fail:a@example.com"

	// A counter left behind without a TTL.
	if err := mr.Set(key, "7"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := th.RecordFailure(ctx, "a@example.com"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Fatalf("expected ttl to be restored, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := th.Allow(ctx, "a@example.com"); !ok {
		t.Fatalf("expected the stale lockout to clear after the window")
	}
}
