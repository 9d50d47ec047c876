package dm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/models"
)

// ThreadID is the document id shared by both sides. The sorted pair is
// length-prefixed before hashing so no two pairs share an id, whatever
// characters the uids contain.
func ThreadID(a, b string) (string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: both uids are required", ErrBadRequest)
	}
	if a == b {
		return "", fmt.Errorf("%w: cannot message yourself", ErrBadRequest)
	}
	if b < a {
		a, b = b, a
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s%s", len(a), a, b)))
	return hex.EncodeToString(sum[:]), nil
}

// Thread lives at directMessages/{threadId}.
type Thread struct {
	ID            string               `firestore:"-" json:"id"`
	Participants  []string             `firestore:"participants" json:"participants"`
	LastMessage   string               `firestore:"lastMessage" json:"lastMessage"`
	LastMessageAt *time.Time           `firestore:"lastMessageAt" json:"lastMessageAt,omitempty"`
	LastSender    string               `firestore:"lastSender" json:"lastSender"`
	LastRead      map[string]time.Time `firestore:"lastRead" json:"-"`
	UpdatedAt     time.Time            `firestore:"updatedAt" json:"updatedAt"`

	PeerUID string `firestore:"-" json:"peerUid"`
	Unread  bool   `firestore:"-" json:"unread"`
}

// Peer returns the other participant.
func (t Thread) Peer(uid string) string {
	for _, p := range t.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// HasUnread follows the chat room rule: a message arrived after the last
// read mark.
func (t Thread) HasUnread(uid string) bool {
	if t.LastMessageAt == nil {
		return false
	}
	last, ok := t.LastRead[uid]
	if !ok {
		return true
	}
	return t.LastMessageAt.After(last)
}

// Message lives at directMessages/{threadId}/messages/{id}.
type Message struct {
	ID        string              `firestore:"-" json:"id"`
	SenderUID string              `firestore:"senderUid" json:"senderUid"`
	Text      string              `firestore:"text" json:"text"`
	Files     []models.Attachment `firestore:"files" json:"files"`
	CreatedAt time.Time           `firestore:"createdAt" json:"createdAt"`
}

// SendInput shares the chat message rules.
type SendInput = chat.SendMessageInput
