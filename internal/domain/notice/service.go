package notice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

// Directory is what notices need from the member list; *user.Repo satisfies it.
type Directory interface {
	Label(ctx context.Context, uid string) string
	AllUIDs(ctx context.Context) ([]string, error)
}

type Service struct {
	repo   *Repo
	users  Directory
	notify *notifications.Service
}

func NewService(repo *Repo, users Directory, notify *notifications.Service) *Service {
	return &Service{repo: repo, users: users, notify: notify}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Notice, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	q.Q = utils.NormalizeToken(q.Q)
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (*Notice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, uid string, admin bool, in CreateNoticeInput) (*Notice, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	in.Trim()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Broadcast && !admin {
		return nil, fmt.Errorf("%w: only admins can broadcast", ErrUnauthorized)
	}
	files, err := models.CleanAttachments(in.Files)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	now := time.Now().UTC()
	n, err := s.repo.Create(ctx, Notice{
		Title:      in.Title,
		Content:    in.Content,
		AuthorUID:  uid,
		AuthorName: s.users.Label(ctx, uid),
		Files:      files,
		Keywords:   utils.SearchTokens(in.Title),
		Official:   admin && in.Broadcast,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}

	if in.Broadcast && s.notify != nil {
		// 保存済みなので、宛先の取得失敗はここでは返さない
		s.notify.BroadcastAsync(s.users.AllUIDs, notifications.Message{
			SenderUID: uid,
			Title:     n.Title,
			Body:      utils.TrimMax(n.Content, 80),
			Type:      notifications.TypeNotice,
			Data:      map[string]string{"noticeId": n.ID},
		})
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, uid, id string, in UpdateNoticeInput) (*Notice, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.CanEdit(uid) {
		return nil, fmt.Errorf("%w: only the author can edit", ErrUnauthorized)
	}
	in.Trim()
	if err := in.Apply(n); err != nil {
		return nil, err
	}
	n.Keywords = utils.SearchTokens(n.Title)
	n.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, *n); err != nil {
		return nil, fmt.Errorf("failed to update notice: %w", err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, uid string, admin bool, id string) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !n.CanDelete(uid, admin) {
		return fmt.Errorf("%w: only the author or an admin can delete", ErrUnauthorized)
	}
	if err := s.repo.Delete(ctx, n.ID); err != nil {
		return fmt.Errorf("failed to delete notice: %w", err)
	}
	return nil
}
