package chat

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func groupRoom(capacity int, members ...string) Room {
	r := NewRoom("반상회", RoomTypeGroup, Member{UID: members[0], Name: "N-" + members[0]}, capacity, t0)
	for _, uid := range members[1:] {
		_ = r.AddMember(Member{UID: uid, Name: "N-" + uid, Nickname: "nick-" + uid})
	}
	return r
}

func TestNewRoomOwnerIsFirstParticipant(t *testing.T) {
	r := NewRoom("동네", RoomTypeGroup, Member{UID: "owner", Name: "Kim"}, 0, t0)
	if !reflect.DeepEqual(r.Participants, []string{"owner"}) {
		t.Fatalf("participants = %v", r.Participants)
	}
	if r.CreatedBy != "owner" {
		t.Errorf("createdBy = %q", r.CreatedBy)
	}
	if !r.LastRead["owner"].Equal(t0) {
		t.Errorf("owner lastRead = %v", r.LastRead["owner"])
	}
	if r.HasUnread("owner") {
		t.Error("fresh room has no unread messages")
	}
}

func TestAddMemberKeepsArraysParallel(t *testing.T) {
	r := groupRoom(0, "a", "b", "c")
	if len(r.Participants) != 3 || len(r.ParticipantNames) != 3 || len(r.ParticipantNicknames) != 3 {
		t.Fatalf("arrays out of step: %v %v %v", r.Participants, r.ParticipantNames, r.ParticipantNicknames)
	}
	if err := r.AddMember(Member{UID: "b", Name: "again"}); err != nil {
		t.Fatalf("re-adding is a no-op, got %v", err)
	}
	if len(r.Participants) != 3 {
		t.Errorf("duplicate member added: %v", r.Participants)
	}
	members := r.Members()
	if members[2] != (Member{UID: "c", Name: "N-c", Nickname: "nick-c"}) {
		t.Errorf("members[2] = %+v", members[2])
	}
}

func TestAddMemberRejections(t *testing.T) {
	r := groupRoom(2, "a", "b")
	if err := r.AddMember(Member{UID: "c"}); !errors.Is(err, ErrConflict) {
		t.Errorf("full room err = %v, want ErrConflict", err)
	}

	r = groupRoom(0, "a", "b")
	r.Ban("b")
	if err := r.AddMember(Member{UID: "b"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("banned err = %v, want ErrUnauthorized", err)
	}
	r.Unban("b")
	if err := r.AddMember(Member{UID: "b"}); err != nil {
		t.Errorf("after unban err = %v", err)
	}
	if r.Left["b"] {
		t.Error("rejoining clears the left flag")
	}
}

func TestRemoveMember(t *testing.T) {
	r := groupRoom(0, "a", "b", "c")
	if !r.RemoveMember("b") {
		t.Fatal("b should have been removed")
	}
	if !reflect.DeepEqual(r.Participants, []string{"a", "c"}) {
		t.Errorf("participants = %v", r.Participants)
	}
	if !reflect.DeepEqual(r.ParticipantNames, []string{"N-a", "N-c"}) {
		t.Errorf("names = %v", r.ParticipantNames)
	}
	if !reflect.DeepEqual(r.ParticipantNicknames, []string{"", "nick-c"}) {
		t.Errorf("nicknames = %v", r.ParticipantNicknames)
	}
	if !r.Left["b"] {
		t.Error("left flag not set")
	}
	if r.RemoveMember("b") {
		t.Error("removing a non-member should report false")
	}
}

func TestLeaveHandsOverOwnership(t *testing.T) {
	r := groupRoom(0, "a", "b", "c")
	if err := r.Leave("a"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if r.CreatedBy != "b" {
		t.Errorf("createdBy = %q, want b", r.CreatedBy)
	}

	if err := r.Leave("zzz"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("non-member leave err = %v", err)
	}

	r = groupRoom(0, "solo")
	if err := r.Leave("solo"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if len(r.Participants) != 0 || r.CreatedBy != "solo" {
		t.Errorf("last one out leaves an empty room: %+v", r)
	}
}

func TestHasUnread(t *testing.T) {
	msgAt := t0.Add(time.Hour)
	tests := []struct {
		name string
		room Room
		want bool
	}{
		{"no messages", Room{UpdatedAt: msgAt}, false},
		{"never read", Room{LastMessageAt: &msgAt, UpdatedAt: msgAt}, true},
		{"read before update", Room{LastMessageAt: &msgAt, UpdatedAt: msgAt, LastRead: map[string]time.Time{"u": t0}}, true},
		{"read at update", Room{LastMessageAt: &msgAt, UpdatedAt: msgAt, LastRead: map[string]time.Time{"u": msgAt}}, false},
		{"read after update", Room{LastMessageAt: &msgAt, UpdatedAt: msgAt, LastRead: map[string]time.Time{"u": msgAt.Add(time.Minute)}}, false},
		{"rename after read", Room{LastMessageAt: &msgAt, UpdatedAt: msgAt.Add(2 * time.Hour), LastRead: map[string]time.Time{"u": msgAt.Add(time.Minute)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.room.HasUnread("u"); got != tt.want {
				t.Errorf("HasUnread = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinDoesNotMarkRoomUnread(t *testing.T) {
	r := groupRoom(0, "owner")
	msgAt := t0.Add(time.Hour)
	r.LastMessageAt = &msgAt
	r.UpdatedAt = msgAt
	r.LastRead["owner"] = msgAt

	// what JoinRoom does inside the transaction, then the write stamp
	joinAt := msgAt.Add(time.Hour)
	if err := r.AddMember(Member{UID: "joiner", Name: "Lee"}); err != nil {
		t.Fatal(err)
	}
	r.LastRead["joiner"] = joinAt
	r.UpdatedAt = joinAt.Add(time.Second)

	if r.HasUnread("joiner") {
		t.Error("joiner sees their own room as unread right after joining")
	}
	if r.HasUnread("owner") {
		t.Error("a join without a message must not mark the room unread")
	}

	later := r.UpdatedAt.Add(time.Minute)
	r.LastMessageAt = &later
	if !r.HasUnread("owner") || !r.HasUnread("joiner") {
		t.Error("a new message should be unread for both")
	}
}

func TestCanModerate(t *testing.T) {
	group := groupRoom(0, "owner", "guest")
	meeting := groupRoom(0, "host", "guest")
	meeting.Type = RoomTypeMeeting
	meeting.MeetingID = "m1"

	cases := []struct {
		name  string
		room  Room
		uid   string
		check func(error) bool
	}{
		{"creator of group", group, "owner", func(err error) bool { return err == nil }},
		{"member of group", group, "guest", IsErrUnauthorized},
		{"host of meeting room", meeting, "host", IsErrBadRequest},
		{"member of meeting room", meeting, "guest", IsErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.room.CanModerate(tc.uid, "remove members"); !tc.check(err) {
				t.Errorf("CanModerate(%q) = %v", tc.uid, err)
			}
		})
	}
}

func TestNormalizePadsLegacyArrays(t *testing.T) {
	r := Room{Participants: []string{"a", "b"}, ParticipantNames: []string{"A"}}
	r.normalize()
	if len(r.ParticipantNames) != 2 || len(r.ParticipantNicknames) != 2 {
		t.Errorf("names=%v nicknames=%v", r.ParticipantNames, r.ParticipantNicknames)
	}
}

func TestUpdateRoomInputApply(t *testing.T) {
	r := groupRoom(10, "a", "b", "c")
	two, zero, name := 2, 0, "  새 이름 "
	if err := (UpdateRoomInput{Capacity: &two}).Apply(&r); !errors.Is(err, ErrConflict) {
		t.Errorf("capacity below members err = %v", err)
	}
	if err := (UpdateRoomInput{Capacity: &zero, Name: &name}).Apply(&r); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if r.Capacity != 0 || r.Name != "새 이름" {
		t.Errorf("room = %q cap %d", r.Name, r.Capacity)
	}
	if err := (UpdateRoomInput{}).Apply(&r); !errors.Is(err, ErrBadRequest) {
		t.Errorf("empty update err = %v", err)
	}
}

func TestCreateRoomInputClean(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateRoomInput
		wantErr error
	}{
		{"group defaults", CreateRoomInput{Name: "모임"}, nil},
		{"group without name", CreateRoomInput{Type: RoomTypeGroup}, ErrBadRequest},
		{"private needs peer", CreateRoomInput{Type: RoomTypePrivate}, ErrBadRequest},
		{"private ok", CreateRoomInput{Type: RoomTypePrivate, PeerUID: "p"}, nil},
		{"meeting not creatable", CreateRoomInput{Type: RoomTypeMeeting, Name: "x"}, ErrBadRequest},
		{"negative capacity", CreateRoomInput{Name: "x", Capacity: -1}, ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := in.Clean()
			if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
				t.Fatalf("Clean() = %v, want %v", err, tt.wantErr)
			}
			if err == nil && in.Type == RoomTypePrivate && in.Capacity != 2 {
				t.Errorf("private capacity = %d", in.Capacity)
			}
		})
	}
}
