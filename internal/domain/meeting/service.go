package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/user"
)

type Service struct {
	repo   *Repo
	chat   *chat.Service
	users  *user.Repo
	notify *notifications.Service
}

func NewService(repo *Repo, chatSvc *chat.Service, users *user.Repo, notify *notifications.Service) *Service {
	return &Service{repo: repo, chat: chatSvc, users: users, notify: notify}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Meeting, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (*Meeting, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

// Create writes the meeting together with its chat room; the host is the
// first participant of both.
func (s *Service) Create(ctx context.Context, uid string, in CreateMeetingInput) (*Meeting, error) {
	in.Trim()
	host, err := s.chat.MemberOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m, err := in.Build(uid, s.users.Label(ctx, uid), now)
	if err != nil {
		return nil, err
	}
	room := chat.NewRoom(m.Title, chat.RoomTypeMeeting, host, 0, now)
	out, err := s.repo.Create(ctx, m, room)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, uid string, admin bool, id string, in UpdateMeetingInput) (*Meeting, error) {
	return s.repo.Mutate(ctx, id, func(m *Meeting, room *chat.Room) error {
		if !m.CanManage(uid, admin) {
			return fmt.Errorf("%w: only the host can edit", ErrUnauthorized)
		}
		if err := in.Apply(m); err != nil {
			return err
		}
		if room != nil && in.Title != nil {
			room.Name = m.Title
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, uid string, admin bool, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !m.CanManage(uid, admin) {
		return fmt.Errorf("%w: only the host can delete", ErrUnauthorized)
	}
	if err := s.repo.Delete(ctx, *m); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return nil
}

func (s *Service) Apply(ctx context.Context, uid, id string) (*Meeting, error) {
	m, err := s.repo.Mutate(ctx, id, func(m *Meeting, _ *chat.Room) error {
		return m.Apply(uid)
	})
	if err != nil {
		return nil, err
	}
	s.notifyUser(m.HostUID, uid, "참가 신청", s.users.Label(ctx, uid)+"님이 '"+m.Title+"' 모임에 참가를 신청했습니다", m.ID)
	return m, nil
}

func (s *Service) CancelApplication(ctx context.Context, uid, id string) (*Meeting, error) {
	return s.repo.Mutate(ctx, id, func(m *Meeting, _ *chat.Room) error {
		return m.CancelApplication(uid)
	})
}

// Approve moves the applicant into the meeting and its room.
func (s *Service) Approve(ctx context.Context, uid string, admin bool, id, applicant string) (*Meeting, error) {
	member, err := s.chat.MemberOf(ctx, applicant)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Mutate(ctx, id, func(m *Meeting, room *chat.Room) error {
		if !m.CanManage(uid, admin) {
			return fmt.Errorf("%w: only the host can approve", ErrUnauthorized)
		}
		if err := m.Approve(applicant); err != nil {
			return err
		}
		if room != nil {
			if err := room.AddMember(member); err != nil {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyUser(applicant, uid, "참가 승인", "'"+m.Title+"' 모임 참가가 승인되었습니다", m.ID)
	return m, nil
}

func (s *Service) Reject(ctx context.Context, uid string, admin bool, id, applicant string) (*Meeting, error) {
	m, err := s.repo.Mutate(ctx, id, func(m *Meeting, _ *chat.Room) error {
		if !m.CanManage(uid, admin) {
			return fmt.Errorf("%w: only the host can reject", ErrUnauthorized)
		}
		return m.Reject(applicant)
	})
	if err != nil {
		return nil, err
	}
	s.notifyUser(applicant, uid, "참가 거절", "'"+m.Title+"' 모임 참가 신청이 거절되었습니다", m.ID)
	return m, nil
}

func (s *Service) Leave(ctx context.Context, uid, id string) (*Meeting, error) {
	return s.repo.Mutate(ctx, id, func(m *Meeting, room *chat.Room) error {
		if err := m.Leave(uid); err != nil {
			return err
		}
		if room != nil {
			room.RemoveMember(uid)
		}
		return nil
	})
}

func (s *Service) Complete(ctx context.Context, uid string, admin bool, id string) (*Meeting, error) {
	return s.repo.Mutate(ctx, id, func(m *Meeting, _ *chat.Room) error {
		if !m.CanManage(uid, admin) {
			return fmt.Errorf("%w: only the host can complete", ErrUnauthorized)
		}
		return m.Complete()
	})
}

func (s *Service) notifyUser(target, sender, title, body, meetingID string) {
	if s.notify == nil || target == "" {
		return
	}
	s.notify.NotifyAsync([]string{target}, notifications.Message{
		SenderUID: sender,
		Title:     title,
		Body:      body,
		Type:      notifications.TypeMeeting,
		Data:      map[string]string{"meetingId": meetingID},
	})
}
