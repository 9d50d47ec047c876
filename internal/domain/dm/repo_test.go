package dm

import (
	"context"
	"testing"
	"time"

	"neighborhood/backend/internal/testutil"
)

func TestRepoMarkReadNeedsThread(t *testing.T) {
	ctx := context.Background()
	fs := testutil.Firestore(t)
	repo := NewRepo(fs)
	now := time.Now().UTC().Truncate(time.Millisecond)

	id, err := ThreadID("u1", "u2")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkRead(ctx, id, "u1", now); !IsErrNotFound(err) {
		t.Fatalf("MarkRead on missing thread err = %v, want not found", err)
	}
	if _, err := fs.Collection("directMessages").Doc(id).Get(ctx); err == nil {
		t.Fatal("MarkRead must not create a thread")
	}

	if _, err := repo.Add(ctx, id, []string{"u1", "u2"}, Message{SenderUID: "u1", Text: "hi", CreatedAt: now}, "hi"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	threads, err := repo.ListThreads(ctx, "u2", 10)
	if err != nil || len(threads) != 1 {
		t.Fatalf("ListThreads = %v, %v", threads, err)
	}
	if !threads[0].HasUnread("u2") || threads[0].HasUnread("u1") {
		t.Fatalf("unread u1=%v u2=%v", threads[0].HasUnread("u1"), threads[0].HasUnread("u2"))
	}

	if err := repo.MarkRead(ctx, id, "u2", now.Add(time.Second)); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	threads, _ = repo.ListThreads(ctx, "u2", 10)
	if threads[0].HasUnread("u2") {
		t.Error("u2 should be caught up after MarkRead")
	}
}
