package dm

import (
	"errors"
	"testing"
	"time"
)

func TestThreadID(t *testing.T) {
	ab, err := ThreadID("kakao:2", "abc")
	if err != nil {
		t.Fatalf("ThreadID: %v", err)
	}
	ba, _ := ThreadID("abc", "kakao:2")
	if ab != ba || len(ab) != 64 {
		t.Errorf("ThreadID = %q / %q", ab, ba)
	}
	// underscores inside uids must not make two pairs collide
	x, _ := ThreadID("a_b", "c")
	y, _ := ThreadID("a", "b_c")
	if x == y {
		t.Errorf("ThreadID(a_b, c) == ThreadID(a, b_c) = %q", x)
	}
	if _, err := ThreadID("u", "u"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("self thread err = %v", err)
	}
	if _, err := ThreadID("u", " "); !errors.Is(err, ErrBadRequest) {
		t.Errorf("blank peer err = %v", err)
	}
}

func TestThreadPeerAndUnread(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	th := Thread{
		Participants:  []string{"a", "b"},
		LastMessageAt: &at,
		UpdatedAt:     at,
		LastRead:      map[string]time.Time{"a": at},
	}
	if th.Peer("a") != "b" || th.Peer("b") != "a" {
		t.Error("Peer mismatch")
	}
	if th.HasUnread("a") {
		t.Error("sender has read their own message")
	}
	if !th.HasUnread("b") {
		t.Error("recipient has not read it")
	}

	// a header rewrite without a new message keeps the thread read
	th.UpdatedAt = at.Add(time.Minute)
	if th.HasUnread("a") {
		t.Error("updatedAt alone must not mark the thread unread")
	}
}
