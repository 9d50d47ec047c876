package chat

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore batches cap at 500 writes.
const batchSize = 450

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) rooms() *firestore.CollectionRef { return r.fs.Collection("chatRooms") }

func (r *Repo) RoomRef(id string) *firestore.DocumentRef { return r.rooms().Doc(id) }

// NewRoomRef allocates an id without writing.
func (r *Repo) NewRoomRef() *firestore.DocumentRef { return r.rooms().NewDoc() }

func (r *Repo) messages(roomID string) *firestore.CollectionRef {
	return r.RoomRef(roomID).Collection("messages")
}

func (r *Repo) announcements(roomID string) *firestore.CollectionRef {
	return r.RoomRef(roomID).Collection("notices")
}

func (r *Repo) polls(roomID string) *firestore.CollectionRef {
	return r.RoomRef(roomID).Collection("polls")
}

func (r *Repo) invitations(roomID string) *firestore.CollectionRef {
	return r.RoomRef(roomID).Collection("invitations")
}

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }

// DecodeRoom reads a room document and aligns its parallel arrays.
func DecodeRoom(doc *firestore.DocumentSnapshot) (*Room, error) {
	var room Room
	if err := doc.DataTo(&room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	room.ID = doc.Ref.ID
	room.normalize()
	return &room, nil
}

// ReadRoomTx loads a room inside a transaction.
func ReadRoomTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (*Room, error) {
	doc, err := tx.Get(ref)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, ref.ID)
	}
	if err != nil {
		return nil, err
	}
	return DecodeRoom(doc)
}

func (r *Repo) CreateRoom(ctx context.Context, room Room) (*Room, error) {
	ref := r.rooms().NewDoc()
	if _, err := ref.Create(ctx, room); err != nil {
		return nil, err
	}
	room.ID = ref.ID
	return &room, nil
}

func (r *Repo) GetRoom(ctx context.Context, id string) (*Room, error) {
	doc, err := r.RoomRef(id).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return DecodeRoom(doc)
}

// FindPrivateRoom returns the existing 1:1 room between a and b, if any.
func (r *Repo) FindPrivateRoom(ctx context.Context, a, b string) (*Room, error) {
	it := r.rooms().
		Where("type", "==", RoomTypePrivate).
		Where("participants", "array-contains", a).
		Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		room, err := DecodeRoom(doc)
		if err != nil {
			return nil, err
		}
		if room.IsMember(b) {
			return room, nil
		}
	}
}

// MutateRoom runs fn on a fresh copy of the room inside a transaction and
// writes the result back.
func (r *Repo) MutateRoom(ctx context.Context, id string, fn func(*Room) error) (*Room, error) {
	ref := r.RoomRef(id)
	var out *Room
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		room, err := ReadRoomTx(tx, ref)
		if err != nil {
			return err
		}
		if err := fn(room); err != nil {
			return err
		}
		room.UpdatedAt = time.Now().UTC()
		out = room
		return tx.Set(ref, room)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MyRoomsQuery lists the rooms uid participates in, most recently active first.
func (r *Repo) MyRoomsQuery(uid string) firestore.Query {
	return r.rooms().
		Where("participants", "array-contains", uid).
		OrderBy("updatedAt", firestore.Desc)
}

func (r *Repo) ListRooms(ctx context.Context, uid string, limit int) ([]Room, error) {
	it := r.MyRoomsQuery(uid).Limit(limit).Documents(ctx)
	defer it.Stop()
	out := []Room{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		room, err := DecodeRoom(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, nil
}

// DeleteRoom removes the room and everything under it.
func (r *Repo) DeleteRoom(ctx context.Context, id string) error {
	for _, col := range []*firestore.CollectionRef{
		r.messages(id), r.announcements(id), r.polls(id), r.invitations(id),
	} {
		if err := r.deleteCollection(ctx, col); err != nil {
			return err
		}
	}
	_, err := r.RoomRef(id).Delete(ctx)
	return err
}

func (r *Repo) deleteCollection(ctx context.Context, col *firestore.CollectionRef) error {
	for {
		it := col.Limit(batchSize).Documents(ctx)
		batch := r.fs.Batch()
		n := 0
		for {
			doc, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				it.Stop()
				return err
			}
			batch.Delete(doc.Ref)
			n++
		}
		it.Stop()
		if n == 0 {
			return nil
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
}

// AddMessage writes the message and bumps the room's last-message fields in
// one batch. The sender's read mark moves with it.
func (r *Repo) AddMessage(ctx context.Context, roomID string, m Message, preview string) (*Message, error) {
	ref := r.messages(roomID).NewDoc()
	batch := r.fs.Batch()
	batch.Create(ref, m)
	batch.Update(r.RoomRef(roomID), []firestore.Update{
		{Path: "lastMessage", Value: preview},
		{Path: "lastMessageAt", Value: m.CreatedAt},
		{Path: "updatedAt", Value: m.CreatedAt},
		{FieldPath: firestore.FieldPath{"lastRead", m.SenderUID}, Value: m.CreatedAt},
	})
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	m.ID = ref.ID
	return &m, nil
}

// MessagesQuery is newest first.
func (r *Repo) MessagesQuery(roomID string) firestore.Query {
	return r.messages(roomID).OrderBy("createdAt", firestore.Desc)
}

func (r *Repo) ListMessages(ctx context.Context, roomID string, before time.Time, limit int) ([]Message, error) {
	q := r.MessagesQuery(roomID)
	if !before.IsZero() {
		q = q.StartAfter(before)
	}
	it := q.Limit(limit).Documents(ctx)
	defer it.Stop()
	out := []Message{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var m Message
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		out = append(out, m)
	}
	return out, nil
}

func (r *Repo) MarkRead(ctx context.Context, roomID, uid string, at time.Time) error {
	_, err := r.RoomRef(roomID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"lastRead", uid}, Value: at},
	})
	return err
}

// ---- invitations ----

func (r *Repo) InvitationRef(roomID, invitee string) *firestore.DocumentRef {
	return r.invitations(roomID).Doc(invitee)
}

func (r *Repo) CreateInvitation(ctx context.Context, inv Invitation) error {
	_, err := r.InvitationRef(inv.RoomID, inv.InviteeUID).Create(ctx, inv)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: already invited", ErrConflict)
	}
	return err
}

func (r *Repo) DeleteInvitation(ctx context.Context, roomID, invitee string) error {
	_, err := r.InvitationRef(roomID, invitee).Delete(ctx)
	return err
}

// ListInvitations uses a collection-group query across every room.
func (r *Repo) ListInvitations(ctx context.Context, invitee string) ([]Invitation, error) {
	it := r.fs.CollectionGroup("invitations").
		Where("inviteeUid", "==", invitee).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer it.Stop()
	out := []Invitation{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var inv Invitation
		if err := doc.DataTo(&inv); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// AcceptInvitation consumes the sentinel and joins the room atomically.
func (r *Repo) AcceptInvitation(ctx context.Context, roomID string, m Member) (*Room, error) {
	roomRef := r.RoomRef(roomID)
	invRef := r.InvitationRef(roomID, m.UID)
	var out *Room
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(invRef); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: invitation", ErrNotFound)
			}
			return err
		}
		room, err := ReadRoomTx(tx, roomRef)
		if err != nil {
			return err
		}
		if err := room.AddMember(m); err != nil {
			return err
		}
		room.UpdatedAt = time.Now().UTC()
		if err := tx.Delete(invRef); err != nil {
			return err
		}
		out = room
		return tx.Set(roomRef, room)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---- announcements ----

// AddAnnouncement stores the announcement and posts a notice message for it.
func (r *Repo) AddAnnouncement(ctx context.Context, roomID string, a Announcement, m Message) (*Announcement, error) {
	aRef := r.announcements(roomID).NewDoc()
	mRef := r.messages(roomID).NewDoc()
	m.RefID = aRef.ID
	batch := r.fs.Batch()
	batch.Create(aRef, a)
	batch.Create(mRef, m)
	batch.Update(r.RoomRef(roomID), []firestore.Update{
		{Path: "lastMessage", Value: Preview(m.Text, nil)},
		{Path: "lastMessageAt", Value: m.CreatedAt},
		{Path: "updatedAt", Value: m.CreatedAt},
		{FieldPath: firestore.FieldPath{"lastRead", m.SenderUID}, Value: m.CreatedAt},
	})
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	a.ID = aRef.ID
	return &a, nil
}

func (r *Repo) ListAnnouncements(ctx context.Context, roomID string) ([]Announcement, error) {
	it := r.announcements(roomID).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()
	out := []Announcement{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var a Announcement
		if err := doc.DataTo(&a); err != nil {
			return nil, err
		}
		a.ID = doc.Ref.ID
		out = append(out, a)
	}
	return out, nil
}

func (r *Repo) HideAnnouncement(ctx context.Context, roomID, id, uid string) error {
	_, err := r.announcements(roomID).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"hiddenBy", uid}, Value: true},
	})
	if isNotFound(err) {
		return fmt.Errorf("%w: announcement %s", ErrNotFound, id)
	}
	return err
}

func (r *Repo) DeleteAnnouncement(ctx context.Context, roomID, id string) error {
	_, err := r.announcements(roomID).Doc(id).Delete(ctx)
	return err
}

// ---- polls ----

// AddPoll stores the poll and posts a poll message for it.
func (r *Repo) AddPoll(ctx context.Context, roomID string, p Poll, m Message) (*Poll, error) {
	pRef := r.polls(roomID).NewDoc()
	mRef := r.messages(roomID).NewDoc()
	m.RefID = pRef.ID
	batch := r.fs.Batch()
	batch.Create(pRef, p)
	batch.Create(mRef, m)
	batch.Update(r.RoomRef(roomID), []firestore.Update{
		{Path: "lastMessage", Value: Preview(m.Text, nil)},
		{Path: "lastMessageAt", Value: m.CreatedAt},
		{Path: "updatedAt", Value: m.CreatedAt},
		{FieldPath: firestore.FieldPath{"lastRead", m.SenderUID}, Value: m.CreatedAt},
	})
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	p.ID = pRef.ID
	return &p, nil
}

func (r *Repo) GetPoll(ctx context.Context, roomID, id string) (*Poll, error) {
	doc, err := r.polls(roomID).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: poll %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var p Poll
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

func (r *Repo) ListPolls(ctx context.Context, roomID string) ([]Poll, error) {
	it := r.polls(roomID).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()
	out := []Poll{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p Poll
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

// MutatePoll applies fn to the poll inside a transaction.
func (r *Repo) MutatePoll(ctx context.Context, roomID, id string, fn func(*Poll) error) (*Poll, error) {
	ref := r.polls(roomID).Doc(id)
	var out *Poll
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if isNotFound(err) {
			return fmt.Errorf("%w: poll %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		var p Poll
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		p.ID = id
		if err := fn(&p); err != nil {
			return err
		}
		out = &p
		return tx.Update(ref, []firestore.Update{
			{Path: "votes", Value: p.Votes},
			{Path: "closed", Value: p.Closed},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
