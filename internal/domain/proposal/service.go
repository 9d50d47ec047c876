package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/utils"
)

type Service struct {
	repo   *Repo
	users  *user.Repo
	notify *notifications.Service
}

func NewService(repo *Repo, users *user.Repo, notify *notifications.Service) *Service {
	return &Service{repo: repo, users: users, notify: notify}
}

func (s *Service) Create(ctx context.Context, uid string, in CreateProposalInput) (*Proposal, error) {
	in.Trim()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out, err := s.repo.Create(ctx, Proposal{
		Title:      in.Title,
		Content:    in.Content,
		Category:   in.Category,
		AuthorUID:  uid,
		AuthorName: s.users.Label(ctx, uid),
		Status:     StatusPending,
		Agreed:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Proposal, error) {
	q.Category = utils.NormalizeToken(q.Category)
	q.Status = strings.TrimSpace(q.Status)
	if q.Status != "" && !validStatus(q.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadRequest, q.Status)
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	return s.repo.List(ctx, q)
}

func validStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDone:
		return true
	}
	return false
}

func (s *Service) Get(ctx context.Context, id string) (*Proposal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, uid, id string, in UpdateProposalInput) (*Proposal, error) {
	return s.repo.Mutate(ctx, id, func(p *Proposal) error {
		if err := p.CheckEdit(uid); err != nil {
			return err
		}
		return in.Apply(p)
	})
}

func (s *Service) Delete(ctx context.Context, uid string, admin bool, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !admin && !p.IsAuthor(uid) {
		return fmt.Errorf("%w: only the author or an admin can delete", ErrUnauthorized)
	}
	return s.repo.Delete(ctx, p.ID)
}

func (s *Service) Agree(ctx context.Context, uid, id string) (*Proposal, error) {
	return s.repo.SetAgreement(ctx, id, uid, true)
}

func (s *Service) Withdraw(ctx context.Context, uid, id string) (*Proposal, error) {
	return s.repo.SetAgreement(ctx, id, uid, false)
}

// SetStatus is admin-only; the router gates it.
func (s *Service) SetStatus(ctx context.Context, adminUID, id, to string) (*Proposal, error) {
	to = strings.TrimSpace(to)
	if !validStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadRequest, to)
	}
	p, err := s.repo.Mutate(ctx, id, func(p *Proposal) error {
		if err := p.CheckStatus(to); err != nil {
			return err
		}
		p.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.NotifyAsync([]string{p.AuthorUID}, notifications.Message{
			SenderUID: adminUID,
			Title:     "제안 상태 변경",
			Body:      "'" + p.Title + "' 제안이 " + statusLabel(to) + " 처리되었습니다",
			Type:      notifications.TypeProposal,
			Data:      map[string]string{"proposalId": p.ID, "status": to},
		})
	}
	return p, nil
}

func statusLabel(s string) string {
	switch s {
	case StatusApproved:
		return "승인"
	case StatusRejected:
		return "반려"
	case StatusDone:
		return "완료"
	}
	return s
}
