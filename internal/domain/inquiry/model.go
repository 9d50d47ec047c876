package inquiry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

const (
	StatusWaiting  = "waiting"
	StatusAnswered = "answered"
)

// Inquiry lives at inquiries/{id}.
type Inquiry struct {
	ID         string              `firestore:"-" json:"id"`
	Title      string              `firestore:"title" json:"title"`
	Content    string              `firestore:"content" json:"content"`
	AuthorUID  string              `firestore:"authorUid" json:"authorUid"`
	AuthorName string              `firestore:"authorName" json:"authorName"`
	Private    bool                `firestore:"private" json:"private"`
	Status     string              `firestore:"status" json:"status"`
	Reply      string              `firestore:"reply" json:"reply"`
	RepliedBy  string              `firestore:"repliedBy" json:"repliedBy,omitempty"`
	RepliedAt  *time.Time          `firestore:"repliedAt" json:"repliedAt,omitempty"`
	Files      []models.Attachment `firestore:"files" json:"files"`
	CreatedAt  time.Time           `firestore:"createdAt" json:"createdAt"`
}

// CanView: private inquiries are visible to their author and admins only.
func (q Inquiry) CanView(uid string, admin bool) bool {
	return !q.Private || admin || (uid != "" && q.AuthorUID == uid)
}

// CanDelete: the author while unanswered, or an admin at any time.
func (q Inquiry) CanDelete(uid string, admin bool) bool {
	if admin {
		return true
	}
	return uid != "" && q.AuthorUID == uid && q.Status == StatusWaiting
}

// Answer records the admin's reply.
func (q *Inquiry) Answer(adminUID, reply string, now time.Time) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fmt.Errorf("%w: reply is required", ErrBadRequest)
	}
	if utils.RuneLen(reply) > 5000 {
		return fmt.Errorf("%w: reply is too long", ErrBadRequest)
	}
	q.Reply = reply
	q.RepliedBy = adminUID
	q.RepliedAt = &now
	q.Status = StatusAnswered
	return nil
}

// Visible filters a listing down to what the viewer may see.
func Visible(all []Inquiry, uid string, admin bool) []Inquiry {
	out := make([]Inquiry, 0, len(all))
	for _, q := range all {
		if q.CanView(uid, admin) {
			out = append(out, q)
		}
	}
	return out
}

type CreateInquiryInput struct {
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Private bool                `json:"private"`
	Files   []models.Attachment `json:"files,omitempty"`
}

func (in *CreateInquiryInput) Trim() {
	in.Title = utils.NormalizeText(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

func (in CreateInquiryInput) Validate() error {
	if in.Title == "" || utils.RuneLen(in.Title) > 100 {
		return fmt.Errorf("%w: title must be 1 to 100 characters", ErrBadRequest)
	}
	if in.Content == "" || utils.RuneLen(in.Content) > 5000 {
		return fmt.Errorf("%w: content must be 1 to 5000 characters", ErrBadRequest)
	}
	return nil
}

type AnswerInput struct {
	Reply string `json:"reply"`
}

// MergeNewest combines listings newest first, dropping duplicates, and keeps
// at most limit entries.
func MergeNewest(limit int, lists ...[]Inquiry) []Inquiry {
	seen := map[string]bool{}
	out := []Inquiry{}
	for _, l := range lists {
		for _, q := range l {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
