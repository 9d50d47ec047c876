package inquiry

import (
	"context"
	"fmt"

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

func (r *Repo) col() *firestore.CollectionRef { return r.fs.Collection("inquiries") }

func (r *Repo) Create(ctx context.Context, q Inquiry) (*Inquiry, error) {
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, q); err != nil {
		return nil, err
	}
	q.ID = ref.ID
	return &q, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Inquiry, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: inquiry %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var q Inquiry
	if err := doc.DataTo(&q); err != nil {
		return nil, err
	}
	q.ID = doc.Ref.ID
	return &q, nil
}

func (r *Repo) Save(ctx context.Context, q Inquiry) error {
	_, err := r.col().Doc(q.ID).Set(ctx, q)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// List returns the newest inquiries regardless of privacy.
func (r *Repo) List(ctx context.Context, limit int) ([]Inquiry, error) {
	return r.query(ctx, r.col().OrderBy("createdAt", firestore.Desc).Limit(limit))
}

// ListPublic returns the newest inquiries anyone may read.
func (r *Repo) ListPublic(ctx context.Context, limit int) ([]Inquiry, error) {
	return r.query(ctx, r.col().
		Where("private", "==", false).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit))
}

// ListByAuthor returns uid's own inquiries, private ones included.
func (r *Repo) ListByAuthor(ctx context.Context, uid string, limit int) ([]Inquiry, error) {
	return r.query(ctx, r.col().
		Where("authorUid", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit))
}

func (r *Repo) query(ctx context.Context, fq firestore.Query) ([]Inquiry, error) {
	it := fq.Documents(ctx)
	defer it.Stop()
	out := []Inquiry{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var q Inquiry
		if err := doc.DataTo(&q); err != nil {
			return nil, err
		}
		q.ID = doc.Ref.ID
		out = append(out, q)
	}
	return out, nil
}
