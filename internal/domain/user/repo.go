package user

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

func (r *Repo) col() *firestore.CollectionRef { return r.fs.Collection("users") }

func (r *Repo) Get(ctx context.Context, uid string) (*Profile, error) {
	doc, err := r.col().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, uid)
	}
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if p.UID == "" {
		p.UID = uid
	}
	return &p, nil
}

// GetMany loads profiles in one round trip; missing users are omitted.
func (r *Repo) GetMany(ctx context.Context, uids []string) (map[string]Profile, error) {
	out := make(map[string]Profile, len(uids))
	if len(uids) == 0 {
		return out, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, r.col().Doc(uid))
	}
	snaps, err := r.fs.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	for _, s := range snaps {
		if !s.Exists() {
			continue
		}
		var p Profile
		if err := s.DataTo(&p); err != nil {
			continue
		}
		p.UID = s.Ref.ID
		out[p.UID] = p
	}
	return out, nil
}

// Ensure creates the profile on first sign-in and otherwise only refreshes
// fields the identity provider owns.
func (r *Repo) Ensure(ctx context.Context, uid, displayName, email, provider string) (*Profile, error) {
	ref := r.col().Doc(uid)
	now := time.Now().UTC()
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return tx.Create(ref, Profile{
				UID:         uid,
				Email:       email,
				DisplayName: displayName,
				Provider:    provider,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if err != nil {
			return err
		}
		updates := []firestore.Update{{Path: "updatedAt", Value: now}}
		if email != "" && snap.Data()["email"] != email {
			updates = append(updates, firestore.Update{Path: "email", Value: email})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return r.Get(ctx, uid)
}

func (r *Repo) Merge(ctx context.Context, uid string, updates map[string]interface{}) error {
	_, err := r.col().Doc(uid).Set(ctx, updates, firestore.MergeAll)
	return err
}

func (r *Repo) List(ctx context.Context, limit int) ([]Profile, error) {
	iter := r.col().OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	out := []Profile{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		var p Profile
		if err := doc.DataTo(&p); err != nil {
			continue
		}
		p.UID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

// AllUIDs walks the collection for broadcast fan-out.
func (r *Repo) AllUIDs(ctx context.Context) ([]string, error) {
	iter := r.col().Where("disabled", "==", false).Select().Documents(ctx)
	defer iter.Stop()

	var out []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, doc.Ref.ID)
	}
	return out, nil
}

// Label resolves the display label for uid, falling back to the uid itself.
func (r *Repo) Label(ctx context.Context, uid string) string {
	p, err := r.Get(ctx, uid)
	if err != nil {
		return uid
	}
	return p.Label()
}
