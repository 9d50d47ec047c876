package inquiry

import (
	"context"
	"testing"
	"time"

	"neighborhood/backend/internal/testutil"
)

func TestServiceListFillsPageDespitePrivate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testutil.Firestore(t))
	svc := NewService(repo, nil, nil)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	add := func(title, author string, private bool, at time.Duration) {
		t.Helper()
		if _, err := repo.Create(ctx, Inquiry{
			Title: title, Content: "내용", AuthorUID: author, Private: private,
			Status: StatusWaiting, CreatedAt: base.Add(at),
		}); err != nil {
			t.Fatal(err)
		}
	}
	// the newest page is all someone else's private inquiries
	add("x1", "other", true, 10*time.Hour)
	add("x2", "other", true, 11*time.Hour)
	add("x3", "other", true, 12*time.Hour)
	add("p1", "other", false, time.Hour)
	add("p2", "other", false, 2*time.Hour)
	add("o1", "u1", true, 3*time.Hour)

	got, err := svc.List(ctx, "u1", false, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var titles []string
	for _, q := range got {
		titles = append(titles, q.Title)
	}
	want := []string{"o1", "p2", "p1"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}

	all, err := svc.List(ctx, "a1", true, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Title != "x3" {
		t.Errorf("admin page = %+v", all)
	}
}
