package notice

import (
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

const (
	maxTitle   = 100
	maxContent = 5000
)

// Notice is a neighborhood board post at notices/{id}.
type Notice struct {
	ID         string              `firestore:"-" json:"id"`
	Title      string              `firestore:"title" json:"title"`
	Content    string              `firestore:"content" json:"content"`
	AuthorUID  string              `firestore:"authorUid" json:"authorUid"`
	AuthorName string              `firestore:"authorName" json:"authorName"`
	Files      []models.Attachment `firestore:"files" json:"files"`
	Keywords   []string            `firestore:"keywords" json:"-"`
	Official   bool                `firestore:"official" json:"official"`
	CreatedAt  time.Time           `firestore:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `firestore:"updatedAt" json:"updatedAt"`
}

// CanEdit: only the author rewrites a post.
func (n Notice) CanEdit(uid string) bool { return uid != "" && n.AuthorUID == uid }

// CanDelete: the author or an admin.
func (n Notice) CanDelete(uid string, admin bool) bool { return admin || n.CanEdit(uid) }

type CreateNoticeInput struct {
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Files   []models.Attachment `json:"files,omitempty"`
	// Broadcast sends an in-app notification to every member (admin only).
	Broadcast bool `json:"broadcast,omitempty"`
}

func (in *CreateNoticeInput) Trim() {
	in.Title = utils.NormalizeText(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

func (in CreateNoticeInput) Validate() error {
	return validate(in.Title, in.Content)
}

type UpdateNoticeInput struct {
	Title   *string              `json:"title,omitempty"`
	Content *string              `json:"content,omitempty"`
	Files   *[]models.Attachment `json:"files,omitempty"`
}

func (in *UpdateNoticeInput) Trim() {
	if in.Title != nil {
		*in.Title = utils.NormalizeText(*in.Title)
	}
	if in.Content != nil {
		*in.Content = strings.TrimSpace(*in.Content)
	}
}

// Apply merges the input into n and validates the result.
func (in UpdateNoticeInput) Apply(n *Notice) error {
	if in.Title == nil && in.Content == nil && in.Files == nil {
		return fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Files != nil {
		files, err := models.CleanAttachments(*in.Files)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		n.Files = files
	}
	return validate(n.Title, n.Content)
}

func validate(title, content string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if utils.RuneLen(title) > maxTitle {
		return fmt.Errorf("%w: title must be at most %d characters", ErrBadRequest, maxTitle)
	}
	if content == "" {
		return fmt.Errorf("%w: content is required", ErrBadRequest)
	}
	if utils.RuneLen(content) > maxContent {
		return fmt.Errorf("%w: content must be at most %d characters", ErrBadRequest, maxContent)
	}
	return nil
}

type ListQuery struct {
	Limit  int
	Before time.Time
	Q      string
}
