package inquiry

import (
	"errors"
	"testing"
	"time"
)

func TestCanView(t *testing.T) {
	tests := []struct {
		name  string
		q     Inquiry
		uid   string
		admin bool
		want  bool
	}{
		{"public to anyone", Inquiry{AuthorUID: "a"}, "b", false, true},
		{"private to author", Inquiry{AuthorUID: "a", Private: true}, "a", false, true},
		{"private to admin", Inquiry{AuthorUID: "a", Private: true}, "x", true, true},
		{"private to other", Inquiry{AuthorUID: "a", Private: true}, "b", false, false},
		{"private to anonymous", Inquiry{AuthorUID: "", Private: true}, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.CanView(tt.uid, tt.admin); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible(t *testing.T) {
	all := []Inquiry{
		{ID: "1", AuthorUID: "a"},
		{ID: "2", AuthorUID: "a", Private: true},
		{ID: "3", AuthorUID: "b", Private: true},
	}
	if got := Visible(all, "b", false); len(got) != 2 || got[1].ID != "3" {
		t.Errorf("visible to b = %+v", got)
	}
	if got := Visible(all, "c", true); len(got) != 3 {
		t.Errorf("admin sees %d", len(got))
	}
}

func TestAnswerAndDelete(t *testing.T) {
	q := Inquiry{AuthorUID: "a", Status: StatusWaiting}
	if !q.CanDelete("a", false) {
		t.Error("author may delete while waiting")
	}
	if err := q.Answer("admin", "  ", time.Now()); !errors.Is(err, ErrBadRequest) {
		t.Errorf("blank reply err = %v", err)
	}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := q.Answer("admin", " 처리했습니다 ", now); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if q.Status != StatusAnswered || q.Reply != "처리했습니다" || q.RepliedBy != "admin" || !q.RepliedAt.Equal(now) {
		t.Errorf("inquiry = %+v", q)
	}
	if q.CanDelete("a", false) {
		t.Error("author may not delete once answered")
	}
	if !q.CanDelete("x", true) {
		t.Error("admin may always delete")
	}
}

func TestMergeNewestFillsPage(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
	public := []Inquiry{
		{ID: "p3", CreatedAt: at(3)},
		{ID: "p1", CreatedAt: at(1)},
	}
	own := []Inquiry{
		{ID: "o4", Private: true, AuthorUID: "u1", CreatedAt: at(4)},
		{ID: "p1", CreatedAt: at(1)},
		{ID: "o2", Private: true, AuthorUID: "u1", CreatedAt: at(2)},
	}

	got := MergeNewest(3, public, own)
	want := []string{"o4", "p3", "o2"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	if all := MergeNewest(10, public, own); len(all) != 4 {
		t.Errorf("duplicates kept: %d entries", len(all))
	}
}
