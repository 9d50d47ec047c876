package meeting

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"neighborhood/backend/internal/domain/chat"
)

type Repo struct {
	fs    *firestore.Client
	rooms *chat.Repo
}

func NewRepo(fs *firestore.Client, rooms *chat.Repo) *Repo {
	return &Repo{fs: fs, rooms: rooms}
}

func (r *Repo) col() *firestore.CollectionRef { return r.fs.Collection("meetings") }

// Create writes the meeting and its paired chat room in one batch.
func (r *Repo) Create(ctx context.Context, m Meeting, room chat.Room) (*Meeting, error) {
	ref := r.col().NewDoc()
	roomRef := r.rooms.NewRoomRef()
	m.RoomID = roomRef.ID
	room.MeetingID = ref.ID

	batch := r.fs.Batch()
	batch.Create(ref, m)
	batch.Create(roomRef, room)
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	m.ID = ref.ID
	return &m, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Meeting, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: meeting %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var m Meeting
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = doc.Ref.ID
	return &m, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Meeting, error) {
	query := r.col().Query
	if q.Category != "" {
		query = query.Where("category", "==", q.Category)
	}
	if q.Status != "" {
		query = query.Where("status", "==", q.Status)
	}
	it := query.OrderBy("startsAt", firestore.Desc).Limit(q.Limit).Documents(ctx)
	defer it.Stop()

	out := []Meeting{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var m Meeting
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		out = append(out, m)
	}
	return out, nil
}

func (r *Repo) Save(ctx context.Context, m Meeting) error {
	_, err := r.col().Doc(m.ID).Set(ctx, m)
	return err
}

// Delete removes the meeting and its paired room.
func (r *Repo) Delete(ctx context.Context, m Meeting) error {
	if m.RoomID != "" {
		if err := r.rooms.DeleteRoom(ctx, m.RoomID); err != nil {
			return fmt.Errorf("failed to delete meeting room: %w", err)
		}
	}
	_, err := r.col().Doc(m.ID).Delete(ctx)
	return err
}

// Mutate runs fn against the meeting and its paired room inside one
// transaction. room is nil when the meeting has no room document.
func (r *Repo) Mutate(ctx context.Context, id string, fn func(m *Meeting, room *chat.Room) error) (*Meeting, error) {
	ref := r.col().Doc(id)
	var out *Meeting
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: meeting %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		var m Meeting
		if err := doc.DataTo(&m); err != nil {
			return err
		}
		m.ID = id

		var room *chat.Room
		var roomRef *firestore.DocumentRef
		if m.RoomID != "" {
			roomRef = r.rooms.RoomRef(m.RoomID)
			room, err = chat.ReadRoomTx(tx, roomRef)
			if chat.IsErrNotFound(err) {
				room, err = nil, nil
			}
			if err != nil {
				return err
			}
		}

		if err := fn(&m, room); err != nil {
			return err
		}
		now := time.Now().UTC()
		m.UpdatedAt = now
		if err := tx.Set(ref, m); err != nil {
			return err
		}
		if room != nil {
			room.UpdatedAt = now
			if err := tx.Set(roomRef, room); err != nil {
				return err
			}
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
