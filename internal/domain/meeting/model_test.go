package meeting

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func newMeeting(capacity int) Meeting {
	m, err := CreateMeetingInput{
		Title:    "주말 등산",
		StartsAt: "2024-06-01T09:00:00Z",
		Capacity: capacity,
	}.Build("host", "Host", time.Now())
	if err != nil {
		panic(err)
	}
	return m
}

func TestBuildPutsHostFirst(t *testing.T) {
	m := newMeeting(0)
	if !reflect.DeepEqual(m.Participants, []string{"host"}) {
		t.Errorf("participants = %v", m.Participants)
	}
	if m.Status != StatusPending || len(m.Applicants) != 0 {
		t.Errorf("meeting = %+v", m)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateMeetingInput
	}{
		{"no title", CreateMeetingInput{StartsAt: "2024-06-01"}},
		{"bad time", CreateMeetingInput{Title: "x", StartsAt: "next friday"}},
		{"negative capacity", CreateMeetingInput{Title: "x", StartsAt: "2024-06-01", Capacity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.Build("h", "H", time.Now()); !errors.Is(err, ErrBadRequest) {
				t.Errorf("Build err = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestApplyApproveFlow(t *testing.T) {
	m := newMeeting(0)

	if err := m.Apply("host"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("host apply err = %v", err)
	}
	if err := m.Apply("u1"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := m.Apply("u1"); !errors.Is(err, ErrConflict) {
		t.Errorf("double apply err = %v", err)
	}
	if err := m.Approve("u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("approve non-applicant err = %v", err)
	}
	if err := m.Approve("u1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if m.IsApplicant("u1") || !m.IsParticipant("u1") {
		t.Errorf("u1 should move to participants: %+v", m)
	}
	if err := m.Apply("u1"); !errors.Is(err, ErrConflict) {
		t.Errorf("participant apply err = %v", err)
	}
}

func TestCapacity(t *testing.T) {
	m := newMeeting(2)
	_ = m.Apply("u1")
	_ = m.Apply("u2")
	if err := m.Approve("u1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := m.Approve("u2"); !errors.Is(err, ErrConflict) {
		t.Errorf("approve into full meeting err = %v", err)
	}
	if err := m.Apply("u3"); !errors.Is(err, ErrConflict) {
		t.Errorf("apply to full meeting err = %v", err)
	}
}

func TestRejectCancelLeave(t *testing.T) {
	m := newMeeting(0)
	_ = m.Apply("u1")
	_ = m.Apply("u2")
	if err := m.Reject("u1"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := m.CancelApplication("u2"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(m.Applicants) != 0 {
		t.Errorf("applicants = %v", m.Applicants)
	}
	if err := m.CancelApplication("u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cancel twice err = %v", err)
	}

	_ = m.Apply("u3")
	_ = m.Approve("u3")
	if err := m.Leave("host"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("host leave err = %v", err)
	}
	if err := m.Leave("u3"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if m.IsParticipant("u3") {
		t.Error("u3 still a participant")
	}
}

func TestComplete(t *testing.T) {
	m := newMeeting(0)
	_ = m.Apply("u1")
	if err := m.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if m.Status != StatusDone || len(m.Applicants) != 0 {
		t.Errorf("meeting = %+v", m)
	}
	if err := m.Apply("u2"); !errors.Is(err, ErrConflict) {
		t.Errorf("apply after done err = %v", err)
	}
	if err := m.Complete(); !errors.Is(err, ErrConflict) {
		t.Errorf("complete twice err = %v", err)
	}
}

func TestUpdateMeetingInputApply(t *testing.T) {
	m := newMeeting(0)
	_ = m.Apply("u1")
	_ = m.Approve("u1")

	one := 1
	if err := (UpdateMeetingInput{Capacity: &one}).Apply(&m); !errors.Is(err, ErrConflict) {
		t.Errorf("capacity below participants err = %v", err)
	}
	cat := "  Hiking "
	when := "2024-07-01 10:00"
	if err := (UpdateMeetingInput{Category: &cat, StartsAt: &when}).Apply(&m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Category != "hiking" {
		t.Errorf("category = %q", m.Category)
	}
	// 10:00 KST
	if !m.StartsAt.Equal(time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("startsAt = %v", m.StartsAt)
	}
}

func TestListQueryMatchesStoredCategory(t *testing.T) {
	// NFD 한글 + 여러 공백
	raw := "  \u1103\u1173\u11bc\u1109\u1161\u11ab   Club "
	m, err := CreateMeetingInput{
		Title:    "주말 등산",
		Category: raw,
		StartsAt: "2024-06-01T09:00:00Z",
	}.Build("host", "Host", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	q := ListQuery{Category: raw}
	if err := q.Normalize(); err != nil {
		t.Fatal(err)
	}
	if q.Category != m.Category || q.Category != "등산 club" {
		t.Errorf("query category %q, stored %q", q.Category, m.Category)
	}
	if q.Limit != 50 {
		t.Errorf("Limit = %d, want default 50", q.Limit)
	}

	bad := ListQuery{Status: "open"}
	if err := bad.Normalize(); !errors.Is(err, ErrBadRequest) {
		t.Errorf("status open: err = %v", err)
	}
}
