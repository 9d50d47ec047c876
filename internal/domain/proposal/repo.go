package proposal

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

func (r *Repo) col() *firestore.CollectionRef { return r.fs.Collection("proposals") }

func (r *Repo) Create(ctx context.Context, p Proposal) (*Proposal, error) {
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return nil, err
	}
	p.ID = ref.ID
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Proposal, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var p Proposal
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Proposal, error) {
	query := r.col().Query
	if q.Category != "" {
		query = query.Where("category", "==", q.Category)
	}
	if q.Status != "" {
		query = query.Where("status", "==", q.Status)
	}
	it := query.OrderBy("createdAt", firestore.Desc).Limit(q.Limit).Documents(ctx)
	defer it.Stop()

	out := []Proposal{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p Proposal
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// Mutate applies fn inside a transaction and stores the result.
func (r *Repo) Mutate(ctx context.Context, id string, fn func(*Proposal) error) (*Proposal, error) {
	ref := r.col().Doc(id)
	var out *Proposal
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: proposal %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		var p Proposal
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		p.ID = id
		if err := fn(&p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		out = &p
		return tx.Set(ref, p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetAgreement adds or removes uid with an array union/remove so concurrent
// agreements never overwrite each other. The pending check runs in the same
// transaction.
func (r *Repo) SetAgreement(ctx context.Context, id, uid string, agree bool) (*Proposal, error) {
	ref := r.col().Doc(id)
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: proposal %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		var p Proposal
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		if err := p.CheckAgree(); err != nil {
			return err
		}
		var op interface{} = firestore.ArrayRemove(uid)
		if agree {
			op = firestore.ArrayUnion(uid)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "agreed", Value: op},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
