package dm

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) threads() *firestore.CollectionRef { return r.fs.Collection("directMessages") }

func (r *Repo) messages(threadID string) *firestore.CollectionRef {
	return r.threads().Doc(threadID).Collection("messages")
}

// Add writes the message and upserts the thread header in one batch.
func (r *Repo) Add(ctx context.Context, threadID string, participants []string, m Message, preview string) (*Message, error) {
	ref := r.messages(threadID).NewDoc()
	batch := r.fs.Batch()
	batch.Create(ref, m)
	batch.Set(r.threads().Doc(threadID), map[string]interface{}{
		"participants":  participants,
		"lastMessage":   preview,
		"lastMessageAt": m.CreatedAt,
		"lastSender":    m.SenderUID,
		"lastRead":      map[string]interface{}{m.SenderUID: m.CreatedAt},
		"updatedAt":     m.CreatedAt,
	}, firestore.MergeAll)
	if _, err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	m.ID = ref.ID
	return &m, nil
}

// ThreadsQuery lists uid's threads, most recent first.
func (r *Repo) ThreadsQuery(uid string) firestore.Query {
	return r.threads().
		Where("participants", "array-contains", uid).
		OrderBy("updatedAt", firestore.Desc)
}

func (r *Repo) ListThreads(ctx context.Context, uid string, limit int) ([]Thread, error) {
	it := r.ThreadsQuery(uid).Limit(limit).Documents(ctx)
	defer it.Stop()
	out := []Thread{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var t Thread
		if err := doc.DataTo(&t); err != nil {
			return nil, err
		}
		t.ID = doc.Ref.ID
		out = append(out, t)
	}
	return out, nil
}

// MessagesQuery is newest first.
func (r *Repo) MessagesQuery(threadID string) firestore.Query {
	return r.messages(threadID).OrderBy("createdAt", firestore.Desc)
}

func (r *Repo) ListMessages(ctx context.Context, threadID string, before time.Time, limit int) ([]Message, error) {
	q := r.MessagesQuery(threadID)
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

// MarkRead only touches an existing thread; it never creates one.
func (r *Repo) MarkRead(ctx context.Context, threadID, uid string, at time.Time) error {
	_, err := r.threads().Doc(threadID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"lastRead", uid}, Value: at},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: thread", ErrNotFound)
	}
	return err
}
