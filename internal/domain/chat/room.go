package chat

import (
	"fmt"
	"time"
)

const (
	RoomTypeGroup   = "group"
	RoomTypePrivate = "private"
	RoomTypeMeeting = "meeting"
)

const (
	maxRoomName     = 50
	maxRoomCapacity = 300
)

// Room lives at chatRooms/{id}. Participants, ParticipantNames and
// ParticipantNicknames are parallel: index i describes the same member.
type Room struct {
	ID                   string               `firestore:"-" json:"id"`
	Name                 string               `firestore:"name" json:"name"`
	Type                 string               `firestore:"type" json:"type"`
	MeetingID            string               `firestore:"meetingId,omitempty" json:"meetingId,omitempty"`
	Participants         []string             `firestore:"participants" json:"participants"`
	ParticipantNames     []string             `firestore:"participantNames" json:"participantNames"`
	ParticipantNicknames []string             `firestore:"participantNicknames" json:"participantNicknames"`
	LastRead             map[string]time.Time `firestore:"lastRead" json:"lastRead,omitempty"`
	Left                 map[string]bool      `firestore:"left" json:"left,omitempty"`
	Banned               map[string]bool      `firestore:"banned" json:"banned,omitempty"`
	CreatedBy            string               `firestore:"createdBy" json:"createdBy"`
	Capacity             int                  `firestore:"capacity" json:"capacity"`
	LastMessage          string               `firestore:"lastMessage" json:"lastMessage"`
	LastMessageAt        *time.Time           `firestore:"lastMessageAt" json:"lastMessageAt,omitempty"`
	CreatedAt            time.Time            `firestore:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `firestore:"updatedAt" json:"updatedAt"`

	Unread bool     `firestore:"-" json:"unread"`
	Online []string `firestore:"-" json:"online,omitempty"`
}

// Member is one entry of the parallel participant arrays.
type Member struct {
	UID      string
	Name     string
	Nickname string
}

// NewRoom builds a room with owner as its first participant.
func NewRoom(name, typ string, owner Member, capacity int, now time.Time) Room {
	r := Room{
		Name:      name,
		Type:      typ,
		CreatedBy: owner.UID,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.normalize()
	_ = r.AddMember(owner)
	r.LastRead[owner.UID] = now
	return r
}

// normalize fills nil maps and pads the name arrays so indexes line up
// with Participants even on documents written by older clients.
func (r *Room) normalize() {
	if r.LastRead == nil {
		r.LastRead = map[string]time.Time{}
	}
	if r.Left == nil {
		r.Left = map[string]bool{}
	}
	if r.Banned == nil {
		r.Banned = map[string]bool{}
	}
	if r.Participants == nil {
		r.Participants = []string{}
	}
	n := len(r.Participants)
	r.ParticipantNames = pad(r.ParticipantNames, n)
	r.ParticipantNicknames = pad(r.ParticipantNicknames, n)
}

func pad(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	for len(xs) < n {
		xs = append(xs, "")
	}
	return xs
}

func (r Room) indexOf(uid string) int {
	for i, p := range r.Participants {
		if p == uid {
			return i
		}
	}
	return -1
}

func (r Room) IsMember(uid string) bool { return uid != "" && r.indexOf(uid) >= 0 }

func (r Room) IsCreator(uid string) bool { return uid != "" && r.CreatedBy == uid }

func (r Room) IsBanned(uid string) bool { return r.Banned[uid] }

// CanModerate gates creator-only edits. Meeting rooms follow their meeting,
// so their roster and name are never changed from the chat side.
func (r Room) CanModerate(uid, action string) error {
	if r.Type == RoomTypeMeeting {
		return fmt.Errorf("%w: meeting rooms are managed through the meeting", ErrBadRequest)
	}
	if !r.IsCreator(uid) {
		return fmt.Errorf("%w: only the room creator can %s", ErrUnauthorized, action)
	}
	return nil
}

func (r Room) Full() bool {
	return r.Capacity > 0 && len(r.Participants) >= r.Capacity
}

// Members zips the parallel arrays.
func (r Room) Members() []Member {
	r.normalize()
	out := make([]Member, len(r.Participants))
	for i, uid := range r.Participants {
		out[i] = Member{UID: uid, Name: r.ParticipantNames[i], Nickname: r.ParticipantNicknames[i]}
	}
	return out
}

// AddMember appends m to the parallel arrays. Adding an existing member is
// a no-op so a uid never appears twice.
func (r *Room) AddMember(m Member) error {
	r.normalize()
	if m.UID == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if r.IsBanned(m.UID) {
		return fmt.Errorf("%w: banned from this room", ErrUnauthorized)
	}
	if r.IsMember(m.UID) {
		return nil
	}
	if r.Full() {
		return fmt.Errorf("%w: room is full", ErrConflict)
	}
	r.Participants = append(r.Participants, m.UID)
	r.ParticipantNames = append(r.ParticipantNames, m.Name)
	r.ParticipantNicknames = append(r.ParticipantNicknames, m.Nickname)
	delete(r.Left, m.UID)
	return nil
}

// RemoveMember drops uid from every parallel array and marks it as left.
// Returns false when uid was not a participant.
func (r *Room) RemoveMember(uid string) bool {
	r.normalize()
	i := r.indexOf(uid)
	if i < 0 {
		return false
	}
	r.Participants = append(r.Participants[:i:i], r.Participants[i+1:]...)
	r.ParticipantNames = append(r.ParticipantNames[:i:i], r.ParticipantNames[i+1:]...)
	r.ParticipantNicknames = append(r.ParticipantNicknames[:i:i], r.ParticipantNicknames[i+1:]...)
	r.Left[uid] = true
	delete(r.LastRead, uid)
	return true
}

// Leave removes uid; a departing group-room creator hands ownership to the
// next remaining participant.
func (r *Room) Leave(uid string) error {
	if !r.RemoveMember(uid) {
		return fmt.Errorf("%w: not a participant", ErrBadRequest)
	}
	if r.CreatedBy == uid && r.Type == RoomTypeGroup && len(r.Participants) > 0 {
		r.CreatedBy = r.Participants[0]
	}
	return nil
}

func (r *Room) Ban(uid string) {
	r.RemoveMember(uid)
	r.Banned[uid] = true
}

func (r *Room) Unban(uid string) {
	r.normalize()
	delete(r.Banned, uid)
}

// HasUnread reports whether a message arrived after uid last read the room.
// Membership and rename updates move UpdatedAt but not the message clock.
// With no read mark, a room is unread once it has any message.
func (r Room) HasUnread(uid string) bool {
	if r.LastMessageAt == nil {
		return false
	}
	last, ok := r.LastRead[uid]
	if !ok {
		return true
	}
	return r.LastMessageAt.After(last)
}

// PrivateRoomName is shown for 1:1 rooms that were created without a name.
func PrivateRoomName(a, b Member) string {
	return label(a) + ", " + label(b)
}

func label(m Member) string {
	if m.Nickname != "" {
		return m.Nickname
	}
	if m.Name != "" {
		return m.Name
	}
	return m.UID
}
