package dm

import (
	"context"
	"fmt"
	"time"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/user"
)

type Service struct {
	repo   *Repo
	users  *user.Repo
	notify *notifications.Service
}

func NewService(repo *Repo, users *user.Repo, notify *notifications.Service) *Service {
	return &Service{repo: repo, users: users, notify: notify}
}

func (s *Service) Repo() *Repo { return s.repo }

// Send delivers a message to an existing, enabled member.
func (s *Service) Send(ctx context.Context, from, to string, in SendInput) (*Message, error) {
	id, err := ThreadID(from, to)
	if err != nil {
		return nil, err
	}
	if err := in.Clean(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	peer, err := s.users.Get(ctx, to)
	if err != nil {
		if user.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, to)
		}
		return nil, err
	}
	if peer.Disabled {
		return nil, fmt.Errorf("%w: user %s is not available", ErrNotFound, to)
	}

	m := Message{
		SenderUID: from,
		Text:      in.Text,
		Files:     in.Files,
		CreatedAt: time.Now().UTC(),
	}
	preview := chat.Preview(in.Text, in.Files)
	out, err := s.repo.Add(ctx, id, []string{from, to}, m, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if s.notify != nil {
		s.notify.NotifyAsync([]string{to}, notifications.Message{
			SenderUID: from,
			Title:     s.users.Label(ctx, from),
			Body:      preview,
			Type:      notifications.TypeDirectMessage,
			Data:      map[string]string{"threadId": id, "peerUid": from},
		})
	}
	return out, nil
}

func (s *Service) ListThreads(ctx context.Context, uid string) ([]Thread, error) {
	threads, err := s.repo.ListThreads(ctx, uid, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	for i := range threads {
		threads[i].PeerUID = threads[i].Peer(uid)
		threads[i].Unread = threads[i].HasUnread(uid)
	}
	return threads, nil
}

func (s *Service) ListMessages(ctx context.Context, uid, peer string, before time.Time, limit int) ([]Message, error) {
	id, err := ThreadID(uid, peer)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, id, before, limit)
}

func (s *Service) MarkRead(ctx context.Context, uid, peer string) error {
	id, err := ThreadID(uid, peer)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id, uid, time.Now().UTC())
}
