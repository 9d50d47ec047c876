package proposal

import (
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/utils"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDone     = "done"
)

// transitions lists the statuses an admin may move a proposal to.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusDone},
}

func CanTransition(from, to string) bool {
	return utils.ContainsString(transitions[from], to)
}

// Proposal lives at proposals/{id}.
type Proposal struct {
	ID         string    `firestore:"-" json:"id"`
	Title      string    `firestore:"title" json:"title"`
	Content    string    `firestore:"content" json:"content"`
	Category   string    `firestore:"category" json:"category"`
	AuthorUID  string    `firestore:"authorUid" json:"authorUid"`
	AuthorName string    `firestore:"authorName" json:"authorName"`
	Status     string    `firestore:"status" json:"status"`
	Agreed     []string  `firestore:"agreed" json:"agreed"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (p Proposal) IsAuthor(uid string) bool { return uid != "" && p.AuthorUID == uid }

func (p Proposal) AgreedBy(uid string) bool { return utils.ContainsString(p.Agreed, uid) }

func (p Proposal) Pending() bool { return p.Status == StatusPending }

// CheckAgree is the precondition for Agree and Withdraw.
func (p Proposal) CheckAgree() error {
	if !p.Pending() {
		return fmt.Errorf("%w: proposal is %s", ErrConflict, p.Status)
	}
	return nil
}

func (p Proposal) CheckEdit(uid string) error {
	if !p.IsAuthor(uid) {
		return fmt.Errorf("%w: only the author can edit", ErrUnauthorized)
	}
	if !p.Pending() {
		return fmt.Errorf("%w: only pending proposals can be edited", ErrConflict)
	}
	return nil
}

func (p Proposal) CheckStatus(to string) error {
	if !CanTransition(p.Status, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrConflict, p.Status, to)
	}
	return nil
}

type CreateProposalInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (in *CreateProposalInput) Trim() {
	in.Title = utils.NormalizeText(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = utils.NormalizeToken(in.Category)
}

func (in CreateProposalInput) Validate() error {
	return validate(in.Title, in.Content)
}

type UpdateProposalInput struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (in UpdateProposalInput) Apply(p *Proposal) error {
	if in.Title == nil && in.Content == nil && in.Category == nil {
		return fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	if in.Title != nil {
		p.Title = utils.NormalizeText(*in.Title)
	}
	if in.Content != nil {
		p.Content = strings.TrimSpace(*in.Content)
	}
	if in.Category != nil {
		p.Category = utils.NormalizeToken(*in.Category)
	}
	return validate(p.Title, p.Content)
}

func validate(title, content string) error {
	if title == "" || utils.RuneLen(title) > 100 {
		return fmt.Errorf("%w: title must be 1 to 100 characters", ErrBadRequest)
	}
	if content == "" || utils.RuneLen(content) > 5000 {
		return fmt.Errorf("%w: content must be 1 to 5000 characters", ErrBadRequest)
	}
	return nil
}

type ListQuery struct {
	Category string
	Status   string
	Limit    int
}
