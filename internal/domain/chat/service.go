package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

// Presence reports which uids are currently connected.
type Presence interface {
	Online(ctx context.Context, uids []string) (map[string]bool, error)
}

type Service struct {
	repo     *Repo
	users    *user.Repo
	notify   *notifications.Service
	presence Presence
	now      func() time.Time
}

func NewService(repo *Repo, users *user.Repo, notify *notifications.Service, presence Presence) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notify:   notify,
		presence: presence,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Repo() *Repo { return s.repo }

// MemberOf builds the parallel-array entry for uid from the profile.
func (s *Service) MemberOf(ctx context.Context, uid string) (Member, error) {
	p, err := s.users.Get(ctx, uid)
	if err != nil {
		if user.IsErrNotFound(err) {
			return Member{}, fmt.Errorf("%w: user %s", ErrNotFound, uid)
		}
		return Member{}, err
	}
	return Member{UID: uid, Name: p.DisplayName, Nickname: p.Nickname}, nil
}

func (s *Service) memberRoom(ctx context.Context, uid, roomID string) (*Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrBadRequest)
	}
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsMember(uid) {
		return nil, fmt.Errorf("%w: not a participant", ErrUnauthorized)
	}
	return room, nil
}

// ---- rooms ----

func (s *Service) CreateRoom(ctx context.Context, uid string, in CreateRoomInput) (*Room, error) {
	if err := in.Clean(); err != nil {
		return nil, err
	}
	owner, err := s.MemberOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if in.Type == RoomTypePrivate {
		if in.PeerUID == uid {
			return nil, fmt.Errorf("%w: cannot open a private room with yourself", ErrBadRequest)
		}
		peer, err := s.MemberOf(ctx, in.PeerUID)
		if err != nil {
			return nil, err
		}
		existing, err := s.repo.FindPrivateRoom(ctx, uid, peer.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up private room: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
		if in.Name == "" {
			in.Name = PrivateRoomName(owner, peer)
		}
		room := NewRoom(in.Name, RoomTypePrivate, owner, 2, now)
		if err := room.AddMember(peer); err != nil {
			return nil, err
		}
		return s.repo.CreateRoom(ctx, room)
	}

	room := NewRoom(in.Name, RoomTypeGroup, owner, in.Capacity, now)
	out, err := s.repo.CreateRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return out, nil
}

// ListMyRooms returns uid's rooms with the unread flag computed.
func (s *Service) ListMyRooms(ctx context.Context, uid string) ([]Room, error) {
	rooms, err := s.repo.ListRooms(ctx, uid, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	for i := range rooms {
		rooms[i].Unread = rooms[i].HasUnread(uid)
	}
	return rooms, nil
}

// GetRoom is visible to participants only and carries who is online.
func (s *Service) GetRoom(ctx context.Context, uid, roomID string) (*Room, error) {
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	room.Unread = room.HasUnread(uid)
	room.Online = []string{}
	if s.presence != nil {
		online, err := s.presence.Online(ctx, room.Participants)
		if err != nil {
			log.Printf("[chat] presence lookup for room %s: %v", room.ID, err)
		}
		for _, p := range room.Participants {
			if online[p] {
				room.Online = append(room.Online, p)
			}
		}
	}
	return room, nil
}

// CanSubscribe is checked before a live listener is attached.
func (s *Service) CanSubscribe(ctx context.Context, uid, roomID string) error {
	_, err := s.memberRoom(ctx, uid, roomID)
	return err
}

func (s *Service) JoinRoom(ctx context.Context, uid, roomID string) (*Room, error) {
	m, err := s.MemberOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if r.Type != RoomTypeGroup {
			return fmt.Errorf("%w: only group rooms can be joined", ErrUnauthorized)
		}
		if r.IsMember(uid) {
			return fmt.Errorf("%w: already a participant", ErrConflict)
		}
		if err := r.AddMember(m); err != nil {
			return err
		}
		r.LastRead[uid] = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.SystemMessage(ctx, room.ID, label(m)+"님이 입장했습니다")
	return room, nil
}

// LeaveRoom removes uid. The room document stays even when the last
// participant leaves.
func (s *Service) LeaveRoom(ctx context.Context, uid, roomID string) (*Room, error) {
	name := uid
	room, err := s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if r.Type == RoomTypeMeeting {
			return fmt.Errorf("%w: leave the meeting instead", ErrBadRequest)
		}
		name = s.senderName(*r, uid)
		return r.Leave(uid)
	})
	if err != nil {
		return nil, err
	}
	s.SystemMessage(ctx, room.ID, name+"님이 나갔습니다")
	return room, nil
}

func (s *Service) DeleteRoom(ctx context.Context, uid, roomID string) error {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsCreator(uid) {
		return fmt.Errorf("%w: only the room creator can delete it", ErrUnauthorized)
	}
	if room.Type == RoomTypeMeeting {
		return fmt.Errorf("%w: meeting rooms are removed with the meeting", ErrBadRequest)
	}
	if err := s.repo.DeleteRoom(ctx, room.ID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (s *Service) UpdateRoom(ctx context.Context, uid, roomID string, in UpdateRoomInput) (*Room, error) {
	return s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if err := r.CanModerate(uid, "edit it"); err != nil {
			return err
		}
		return in.Apply(r)
	})
}

// ---- invitations ----

func (s *Service) Invite(ctx context.Context, uid, roomID, invitee string) (*Invitation, error) {
	invitee = strings.TrimSpace(invitee)
	if invitee == "" || invitee == uid {
		return nil, fmt.Errorf("%w: invalid invitee", ErrBadRequest)
	}
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	if room.Type != RoomTypeGroup {
		return nil, fmt.Errorf("%w: only group rooms take invitations", ErrBadRequest)
	}
	if room.IsMember(invitee) {
		return nil, fmt.Errorf("%w: already a participant", ErrConflict)
	}
	if room.IsBanned(invitee) {
		return nil, fmt.Errorf("%w: user is banned from this room", ErrConflict)
	}
	if room.Full() {
		return nil, fmt.Errorf("%w: room is full", ErrConflict)
	}
	if _, err := s.MemberOf(ctx, invitee); err != nil {
		return nil, err
	}

	inv := Invitation{
		RoomID:      room.ID,
		RoomName:    room.Name,
		InviteeUID:  invitee,
		InviterUID:  uid,
		InviterName: s.users.Label(ctx, uid),
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.NotifyAsync([]string{invitee}, notifications.Message{
			SenderUID: uid,
			Title:     "채팅방 초대",
			Body:      inv.InviterName + "님이 '" + room.Name + "' 방에 초대했습니다",
			Type:      notifications.TypeChatInvite,
			Data:      map[string]string{"roomId": room.ID},
		})
	}
	return &inv, nil
}

func (s *Service) ListMyInvitations(ctx context.Context, uid string) ([]Invitation, error) {
	out, err := s.repo.ListInvitations(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return out, nil
}

func (s *Service) AcceptInvitation(ctx context.Context, uid, roomID string) (*Room, error) {
	m, err := s.MemberOf(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.repo.AcceptInvitation(ctx, roomID, m)
}

func (s *Service) DeclineInvitation(ctx context.Context, uid, roomID string) error {
	if err := s.repo.DeleteInvitation(ctx, roomID, uid); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	return nil
}

// ---- moderation ----

func (s *Service) Kick(ctx context.Context, uid, roomID, target string) (*Room, error) {
	return s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if err := r.CanModerate(uid, "remove members"); err != nil {
			return err
		}
		if target == uid {
			return fmt.Errorf("%w: use leave instead", ErrBadRequest)
		}
		if !r.RemoveMember(target) {
			return fmt.Errorf("%w: not a participant", ErrNotFound)
		}
		return nil
	})
}

func (s *Service) Ban(ctx context.Context, uid, roomID, target string) (*Room, error) {
	room, err := s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if err := r.CanModerate(uid, "ban members"); err != nil {
			return err
		}
		if target == "" || target == uid {
			return fmt.Errorf("%w: invalid target", ErrBadRequest)
		}
		r.Ban(target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteInvitation(ctx, room.ID, target); err != nil {
		log.Printf("[chat] failed to drop invitation for banned %s: %v", target, err)
	}
	return room, nil
}

func (s *Service) Unban(ctx context.Context, uid, roomID, target string) (*Room, error) {
	return s.repo.MutateRoom(ctx, roomID, func(r *Room) error {
		if err := r.CanModerate(uid, "unban members"); err != nil {
			return err
		}
		r.Unban(target)
		return nil
	})
}

// ---- messages ----

func (s *Service) SendMessage(ctx context.Context, uid, roomID string, in SendMessageInput) (*Message, error) {
	if err := in.Clean(); err != nil {
		return nil, err
	}
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	m := Message{
		Type:       MessageTypeText,
		SenderUID:  uid,
		SenderName: s.senderName(*room, uid),
		Text:       in.Text,
		Files:      in.Files,
		CreatedAt:  s.now(),
	}
	preview := Preview(in.Text, in.Files)
	out, err := s.repo.AddMessage(ctx, room.ID, m, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if s.notify != nil {
		s.notify.NotifyAsync(room.Participants, notifications.Message{
			SenderUID: uid,
			Title:     room.Name,
			Body:      m.SenderName + ": " + preview,
			Type:      notifications.TypeChat,
			Data:      map[string]string{"roomId": room.ID},
		})
	}
	return out, nil
}

func (s *Service) senderName(r Room, uid string) string {
	for _, m := range r.Members() {
		if m.UID == uid {
			return label(m)
		}
	}
	return uid
}

func (s *Service) ListMessages(ctx context.Context, uid, roomID string, before time.Time, limit int) ([]Message, error) {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, roomID, before, limit)
}

func (s *Service) MarkRead(ctx context.Context, uid, roomID string) error {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, roomID, uid, s.now())
}

// ---- announcements ----

func (s *Service) CreateAnnouncement(ctx context.Context, uid, roomID string, in CreateAnnouncementInput) (*Announcement, error) {
	if err := in.Clean(); err != nil {
		return nil, err
	}
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsCreator(uid) {
		return nil, fmt.Errorf("%w: only the room creator can post announcements", ErrUnauthorized)
	}
	now := s.now()
	a := Announcement{
		Title:     in.Title,
		Content:   in.Content,
		Pinned:    in.Pinned,
		AuthorUID: uid,
		HiddenBy:  map[string]bool{},
		CreatedAt: now,
	}
	m := Message{
		Type:       MessageTypeNotice,
		SenderUID:  uid,
		SenderName: s.senderName(*room, uid),
		Text:       "[공지] " + in.Title,
		Files:      []models.Attachment{},
		CreatedAt:  now,
	}
	return s.repo.AddAnnouncement(ctx, room.ID, a, m)
}

// ListAnnouncements hides the ones the viewer dismissed; pinned come first.
func (s *Service) ListAnnouncements(ctx context.Context, uid, roomID string) ([]Announcement, error) {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return nil, err
	}
	all, err := s.repo.ListAnnouncements(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return visibleAnnouncements(all, uid), nil
}

func visibleAnnouncements(all []Announcement, uid string) []Announcement {
	pinned := []Announcement{}
	rest := []Announcement{}
	for _, a := range all {
		if a.HiddenFor(uid) {
			continue
		}
		if a.Pinned {
			pinned = append(pinned, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(pinned, rest...)
}

func (s *Service) HideAnnouncement(ctx context.Context, uid, roomID, id string) error {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return err
	}
	return s.repo.HideAnnouncement(ctx, roomID, id, uid)
}

func (s *Service) DeleteAnnouncement(ctx context.Context, uid, roomID, id string) error {
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return err
	}
	if !room.IsCreator(uid) {
		return fmt.Errorf("%w: only the room creator can delete announcements", ErrUnauthorized)
	}
	return s.repo.DeleteAnnouncement(ctx, roomID, id)
}

// ---- polls ----

func (s *Service) CreatePoll(ctx context.Context, uid, roomID string, in CreatePollInput) (*PollResult, error) {
	now := s.now()
	if err := in.Clean(now); err != nil {
		return nil, err
	}
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	p := Poll{
		Title:     in.Title,
		Options:   in.Options,
		Votes:     map[string][]int{},
		Deadline:  in.Deadline,
		Multiple:  in.Multiple,
		Anonymous: in.Anonymous,
		CreatedBy: uid,
		CreatedAt: now,
	}
	m := Message{
		Type:       MessageTypePoll,
		SenderUID:  uid,
		SenderName: s.senderName(*room, uid),
		Text:       "[투표] " + in.Title,
		Files:      []models.Attachment{},
		CreatedAt:  now,
	}
	out, err := s.repo.AddPoll(ctx, room.ID, p, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}
	res := out.Tally(uid, now)
	return &res, nil
}

func (s *Service) Vote(ctx context.Context, uid, roomID, pollID string, selection []int) (*PollResult, error) {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return nil, err
	}
	now := s.now()
	p, err := s.repo.MutatePoll(ctx, roomID, pollID, func(p *Poll) error {
		return p.Vote(uid, selection, now)
	})
	if err != nil {
		return nil, err
	}
	res := p.Tally(uid, now)
	return &res, nil
}

func (s *Service) ClosePoll(ctx context.Context, uid, roomID, pollID string) (*PollResult, error) {
	room, err := s.memberRoom(ctx, uid, roomID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.MutatePoll(ctx, roomID, pollID, func(p *Poll) error {
		if p.CreatedBy != uid && !room.IsCreator(uid) {
			return fmt.Errorf("%w: only the poll or room creator can close it", ErrUnauthorized)
		}
		p.Closed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := p.Tally(uid, s.now())
	return &res, nil
}

func (s *Service) GetPoll(ctx context.Context, uid, roomID, pollID string) (*PollResult, error) {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPoll(ctx, roomID, pollID)
	if err != nil {
		return nil, err
	}
	res := p.Tally(uid, s.now())
	return &res, nil
}

func (s *Service) ListPolls(ctx context.Context, uid, roomID string) ([]PollResult, error) {
	if _, err := s.memberRoom(ctx, uid, roomID); err != nil {
		return nil, err
	}
	polls, err := s.repo.ListPolls(ctx, roomID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PollResult, 0, len(polls))
	for _, p := range polls {
		out = append(out, p.Tally(uid, now))
	}
	return out, nil
}

// SystemMessage posts an informational line (joins, departures) to a room.
func (s *Service) SystemMessage(ctx context.Context, roomID, text string) {
	m := Message{Type: MessageTypeSystem, Text: utils.NormalizeText(text), Files: []models.Attachment{}, CreatedAt: s.now()}
	if _, err := s.repo.messages(roomID).NewDoc().Create(ctx, m); err != nil {
		log.Printf("[chat] system message in %s: %v", roomID, err)
	}
}
