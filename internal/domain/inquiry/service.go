package inquiry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/models"
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

func (s *Service) Create(ctx context.Context, uid string, in CreateInquiryInput) (*Inquiry, error) {
	in.Trim()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	files, err := models.CleanAttachments(in.Files)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	out, err := s.repo.Create(ctx, Inquiry{
		Title:      in.Title,
		Content:    in.Content,
		AuthorUID:  uid,
		AuthorName: s.users.Label(ctx, uid),
		Private:    in.Private,
		Status:     StatusWaiting,
		Files:      files,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}
	return out, nil
}

// List returns public inquiries plus the viewer's own; admins see all.
func (s *Service) List(ctx context.Context, uid string, admin bool, limit int) ([]Inquiry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if admin {
		all, err := s.repo.List(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list inquiries: %w", err)
		}
		return all, nil
	}
	// 公開分と自分の分を別々に引いてから合わせる
	public, err := s.repo.ListPublic(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	var own []Inquiry
	if uid != "" {
		if own, err = s.repo.ListByAuthor(ctx, uid, limit); err != nil {
			return nil, fmt.Errorf("failed to list inquiries: %w", err)
		}
	}
	return Visible(MergeNewest(limit, public, own), uid, admin), nil
}

// Get hides private inquiries from everyone but the author and admins.
func (s *Service) Get(ctx context.Context, uid string, admin bool, id string) (*Inquiry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.CanView(uid, admin) {
		return nil, fmt.Errorf("%w: inquiry %s", ErrNotFound, id)
	}
	return q, nil
}

// Answer is admin-only; the router gates it.
func (s *Service) Answer(ctx context.Context, adminUID, id string, in AnswerInput) (*Inquiry, error) {
	q, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := q.Answer(adminUID, in.Reply, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, *q); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}
	if s.notify != nil {
		s.notify.NotifyAsync([]string{q.AuthorUID}, notifications.Message{
			SenderUID: adminUID,
			Title:     "문의 답변",
			Body:      utils.TrimMax(q.Title, 40) + " 문의에 답변이 등록되었습니다",
			Type:      notifications.TypeInquiry,
			Data:      map[string]string{"inquiryId": q.ID},
		})
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, uid string, admin bool, id string) error {
	q, err := s.Get(ctx, uid, admin, id)
	if err != nil {
		return err
	}
	if !q.CanDelete(uid, admin) {
		return fmt.Errorf("%w: answered inquiries can only be removed by an admin", ErrUnauthorized)
	}
	return s.repo.Delete(ctx, q.ID)
}
