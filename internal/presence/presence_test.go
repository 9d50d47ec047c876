package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestTouchAndOnline(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	if err := s.Touch(ctx, "u1"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	got, err := s.Online(ctx, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("Online: %v", err)
	}
	if !got["u1"] || got["u2"] {
		t.Errorf("online = %v", got)
	}
	if ttl := mr.TTL("presence:u1"); ttl != TTL {
		t.Errorf("ttl = %v, want %v", ttl, TTL)
	}

	mr.FastForward(TTL + time.Second)
	got, _ = s.Online(ctx, []string{"u1"})
	if got["u1"] {
		t.Error("u1 should expire after the TTL")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_ = s.Touch(ctx, "u1")
	if err := s.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, _ := s.Online(ctx, []string{"u1"})
	if got["u1"] {
		t.Error("u1 should be offline after Clear")
	}
}

func TestNilStoreIsOffline(t *testing.T) {
	var s *Store
	ctx := context.Background()
	if err := s.Touch(ctx, "u1"); err != nil {
		t.Errorf("Touch on nil store: %v", err)
	}
	got, err := s.Online(ctx, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("Online: %v", err)
	}
	if len(got) != 2 || got["u1"] || got["u2"] {
		t.Errorf("online = %v", got)
	}
}
