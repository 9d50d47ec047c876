package notice

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

func (r *Repo) col() *firestore.CollectionRef { return r.fs.Collection("notices") }

func (r *Repo) Create(ctx context.Context, n Notice) (*Notice, error) {
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, n); err != nil {
		return nil, err
	}
	n.ID = ref.ID
	return &n, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Notice, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: notice %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var n Notice
	if err := doc.DataTo(&n); err != nil {
		return nil, err
	}
	n.ID = doc.Ref.ID
	return &n, nil
}

func (r *Repo) Save(ctx context.Context, n Notice) error {
	_, err := r.col().Doc(n.ID).Set(ctx, n)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Notice, error) {
	query := r.col().Query
	if q.Q != "" {
		query = query.Where("keywords", "array-contains", q.Q)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if !q.Before.IsZero() {
		query = query.StartAfter(q.Before)
	}
	it := query.Limit(q.Limit).Documents(ctx)
	defer it.Stop()

	out := []Notice{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var n Notice
		if err := doc.DataTo(&n); err != nil {
			return nil, err
		}
		n.ID = doc.Ref.ID
		out = append(out, n)
	}
	return out, nil
}
