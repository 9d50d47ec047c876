package chat

import (
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

const (
	MessageTypeText   = "text"
	MessageTypeNotice = "notice"
	MessageTypePoll   = "poll"
	MessageTypeSystem = "system"
)

// MaxMessageLength is counted in runes.
const MaxMessageLength = 2000

// Message lives at chatRooms/{roomId}/messages/{id}.
type Message struct {
	ID         string              `firestore:"-" json:"id"`
	Type       string              `firestore:"type" json:"type"`
	SenderUID  string              `firestore:"senderUid" json:"senderUid"`
	SenderName string              `firestore:"senderName" json:"senderName"`
	Text       string              `firestore:"text" json:"text"`
	Files      []models.Attachment `firestore:"files" json:"files"`
	// RefID points at the announcement or poll a notice/poll message announces.
	RefID     string    `firestore:"refId,omitempty" json:"refId,omitempty"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

type SendMessageInput struct {
	Text  string              `json:"text"`
	Files []models.Attachment `json:"files,omitempty"`
}

// Clean trims the text and validates the message body: non-empty text of at
// most MaxMessageLength runes, or at least one file.
func (in *SendMessageInput) Clean() error {
	in.Text = strings.TrimSpace(in.Text)
	files, err := models.CleanAttachments(in.Files)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	in.Files = files
	if in.Text == "" && len(in.Files) == 0 {
		return fmt.Errorf("%w: message is empty", ErrBadRequest)
	}
	if utils.RuneLen(in.Text) > MaxMessageLength {
		return fmt.Errorf("%w: message must be at most %d characters", ErrBadRequest, MaxMessageLength)
	}
	return nil
}

// Preview is what the room list shows as lastMessage.
func Preview(text string, files []models.Attachment) string {
	if text != "" {
		return utils.TrimMax(utils.NormalizeText(text), 100)
	}
	if len(files) > 0 {
		return "[파일] " + files[0].OriginalName
	}
	return ""
}

// Announcement is a room notice at chatRooms/{roomId}/notices/{id}.
type Announcement struct {
	ID        string          `firestore:"-" json:"id"`
	Title     string          `firestore:"title" json:"title"`
	Content   string          `firestore:"content" json:"content"`
	Pinned    bool            `firestore:"pinned" json:"pinned"`
	AuthorUID string          `firestore:"authorUid" json:"authorUid"`
	HiddenBy  map[string]bool `firestore:"hiddenBy" json:"-"`
	CreatedAt time.Time       `firestore:"createdAt" json:"createdAt"`
}

func (a Announcement) HiddenFor(uid string) bool { return a.HiddenBy[uid] }

type CreateAnnouncementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

func (in *CreateAnnouncementInput) Clean() error {
	in.Title = utils.NormalizeText(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if utils.RuneLen(in.Title) > 100 || utils.RuneLen(in.Content) > MaxMessageLength {
		return fmt.Errorf("%w: announcement is too long", ErrBadRequest)
	}
	return nil
}

// Invitation is the sentinel at chatRooms/{roomId}/invitations/{inviteeUid}.
type Invitation struct {
	RoomID      string    `firestore:"roomId" json:"roomId"`
	RoomName    string    `firestore:"roomName" json:"roomName"`
	InviteeUID  string    `firestore:"inviteeUid" json:"inviteeUid"`
	InviterUID  string    `firestore:"inviterUid" json:"inviterUid"`
	InviterName string    `firestore:"inviterName" json:"inviterName"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

type CreateRoomInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity,omitempty"`
	// PeerUID is required for private rooms.
	PeerUID string `json:"peerUid,omitempty"`
}

func (in *CreateRoomInput) Clean() error {
	in.Name = utils.NormalizeText(in.Name)
	in.PeerUID = strings.TrimSpace(in.PeerUID)
	if in.Type == "" {
		in.Type = RoomTypeGroup
	}
	switch in.Type {
	case RoomTypeGroup:
		if in.Name == "" {
			return fmt.Errorf("%w: name is required", ErrBadRequest)
		}
	case RoomTypePrivate:
		if in.PeerUID == "" {
			return fmt.Errorf("%w: peerUid is required", ErrBadRequest)
		}
		in.Capacity = 2
	default:
		return fmt.Errorf("%w: type must be group or private", ErrBadRequest)
	}
	if utils.RuneLen(in.Name) > maxRoomName {
		return fmt.Errorf("%w: name must be at most %d characters", ErrBadRequest, maxRoomName)
	}
	if in.Capacity < 0 || in.Capacity > maxRoomCapacity {
		return fmt.Errorf("%w: capacity must be between 0 and %d", ErrBadRequest, maxRoomCapacity)
	}
	return nil
}

type UpdateRoomInput struct {
	Name     *string `json:"name,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

// Apply validates and merges the update into r. Capacity may not drop
// below the current participant count; 0 means unlimited.
func (in UpdateRoomInput) Apply(r *Room) error {
	if in.Name == nil && in.Capacity == nil {
		return fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	if in.Name != nil {
		name := utils.NormalizeText(*in.Name)
		if name == "" || utils.RuneLen(name) > maxRoomName {
			return fmt.Errorf("%w: name must be 1 to %d characters", ErrBadRequest, maxRoomName)
		}
		r.Name = name
	}
	if in.Capacity != nil {
		c := *in.Capacity
		if c < 0 || c > maxRoomCapacity {
			return fmt.Errorf("%w: capacity must be between 0 and %d", ErrBadRequest, maxRoomCapacity)
		}
		if c > 0 && c < len(r.Participants) {
			return fmt.Errorf("%w: capacity is below the participant count", ErrConflict)
		}
		r.Capacity = c
	}
	return nil
}
