package notifications

import (
	"strings"
	"time"
)

// Notification types written by the community services.
const (
	TypeGeneral       = "general"
	TypeNotice        = "notice"
	TypeMeeting       = "meeting"
	TypeProposal      = "proposal"
	TypeInquiry       = "inquiry"
	TypeChat          = "chat"
	TypeChatInvite    = "chat_invite"
	TypeDirectMessage = "dm"
)

// Notification represents a notification
type Notification struct {
	ID        string                 `firestore:"-" json:"id"`
	Title     string                 `firestore:"title" json:"title"`
	Body      string                 `firestore:"body" json:"body"`
	Type      string                 `firestore:"type" json:"type"`
	Data      map[string]interface{} `firestore:"data,omitempty" json:"data,omitempty"`
	Read      bool                   `firestore:"read" json:"read"`
	ReadAt    *time.Time             `firestore:"readAt,omitempty" json:"readAt,omitempty"`
	SenderUID string                 `firestore:"senderUid,omitempty" json:"senderUid,omitempty"`
	CreatedAt time.Time              `firestore:"createdAt" json:"createdAt"`
}

// CreateNotificationInput represents input for creating a notification
type CreateNotificationInput struct {
	TargetUID string                 `json:"targetUid"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body,omitempty"`
	Type      string                 `json:"type,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func (in *CreateNotificationInput) Trim() {
	in.TargetUID = strings.TrimSpace(in.TargetUID)
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Type = strings.TrimSpace(in.Type)
}

// Message is one fan-out: the same in-app notification and push for every
// recipient.
type Message struct {
	SenderUID string
	Title     string
	Body      string
	Type      string
	// Data values are stringified for the push payload.
	Data map[string]string
}

// MarkReadInput represents input for marking notifications as read
type MarkReadInput struct {
	NotificationID string `json:"notificationId,omitempty"`
	MarkAll        bool   `json:"markAll,omitempty"`
}

func (in *MarkReadInput) Trim() {
	in.NotificationID = strings.TrimSpace(in.NotificationID)
}

// NotificationsListResult represents the result of listing notifications
type NotificationsListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

// recipients drops blanks, duplicates and the sender.
func recipients(uids []string, sender string) []string {
	seen := make(map[string]struct{}, len(uids))
	out := make([]string, 0, len(uids))
	for _, uid := range uids {
		uid = strings.TrimSpace(uid)
		if uid == "" || uid == sender {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	return out
}

func chunk(s []string, size int) [][]string {
	var out [][]string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}
