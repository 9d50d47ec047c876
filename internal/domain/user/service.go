package user

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
)

// AuthAdmin is the slice of *auth.Client the service drives.
type AuthAdmin interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Service struct {
	repo       *Repo
	authClient AuthAdmin
}

func NewService(repo *Repo, authClient AuthAdmin) *Service {
	return &Service{repo: repo, authClient: authClient}
}

func (s *Service) Get(ctx context.Context, uid string) (*Profile, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, uid)
}

// GetPublic returns what any signed-in member may see about another.
func (s *Service) GetPublic(ctx context.Context, uid string) (*PublicProfile, error) {
	p, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	pub := p.Public()
	return &pub, nil
}

func (s *Service) Ensure(ctx context.Context, uid, displayName, email, provider string) (*Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if displayName == "" {
		displayName = "이웃"
	}
	return s.repo.Ensure(ctx, uid, displayName, email, provider)
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, in UpdateProfileInput) (*Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	in.Trim()
	if in.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updatedAt": time.Now().UTC()}
	if in.DisplayName != nil {
		updates["displayName"] = *in.DisplayName
	}
	if in.Nickname != nil {
		updates["nickname"] = *in.Nickname
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.PhotoURL != nil {
		updates["photoURL"] = *in.PhotoURL
	}
	if err := s.repo.Merge(ctx, uid, updates); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if s.authClient != nil && (in.DisplayName != nil || (in.PhotoURL != nil && *in.PhotoURL != "")) {
		authUpdate := &auth.UserToUpdate{}
		if in.DisplayName != nil {
			authUpdate.DisplayName(*in.DisplayName)
		}
		if in.PhotoURL != nil && *in.PhotoURL != "" {
			authUpdate.PhotoURL(*in.PhotoURL)
		}
		if _, err := s.authClient.UpdateUser(ctx, uid, authUpdate); err != nil {
			// Log but don't fail
			log.Printf("[user] failed to update auth user %s: %v", uid, err)
		}
	}

	return s.repo.Get(ctx, uid)
}

func (s *Service) SetPushToken(ctx context.Context, uid, token string) error {
	token = strings.TrimSpace(token)
	if uid == "" || token == "" {
		return fmt.Errorf("%w: token is required", ErrBadRequest)
	}
	return s.repo.Merge(ctx, uid, map[string]interface{}{
		"pushToken": token,
		"updatedAt": time.Now().UTC(),
	})
}

func (s *Service) ClearPushToken(ctx context.Context, uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	return s.repo.Merge(ctx, uid, map[string]interface{}{
		"pushToken": firestore.Delete,
		"updatedAt": time.Now().UTC(),
	})
}

func (s *Service) List(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}

// Disable blocks sign-in at the identity provider, revokes live sessions and
// flags the profile.
func (s *Service) Disable(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if callerUID == targetUID {
		return ErrCannotDisableSelf
	}
	if _, err := s.repo.Get(ctx, targetUID); err != nil {
		return err
	}
	return s.setDisabled(ctx, callerUID, targetUID, true)
}

func (s *Service) Enable(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, targetUID); err != nil {
		return err
	}
	return s.setDisabled(ctx, callerUID, targetUID, false)
}

func (s *Service) setDisabled(ctx context.Context, callerUID, targetUID string, disabled bool) error {
	if s.authClient != nil {
		authUpdate := (&auth.UserToUpdate{}).Disabled(disabled)
		if _, err := s.authClient.UpdateUser(ctx, targetUID, authUpdate); err != nil {
			return fmt.Errorf("failed to update auth user: %w", err)
		}
		// 発行済みのIDトークンも無効にする
		if disabled {
			if err := s.authClient.RevokeRefreshTokens(ctx, targetUID); err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
		}
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"disabled":  disabled,
		"updatedAt": now,
	}
	if disabled {
		updates["disabledAt"] = now
		updates["disabledBy"] = callerUID
	}
	if err := s.repo.Merge(ctx, targetUID, updates); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetAdmin toggles the admin custom claim; the user picks it up on the next
// token refresh.
func (s *Service) SetAdmin(ctx context.Context, targetUID string, admin bool) error {
	if targetUID == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if s.authClient == nil {
		return fmt.Errorf("auth client is not configured")
	}
	rec, err := s.authClient.GetUser(ctx, targetUID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: user %s", ErrNotFound, targetUID)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	// 他のカスタムクレームは残す
	claims := map[string]interface{}{}
	for k, v := range rec.CustomClaims {
		claims[k] = v
	}
	if admin {
		claims["admin"] = true
	} else {
		delete(claims, "admin")
	}
	if err := s.authClient.SetCustomUserClaims(ctx, targetUID, claims); err != nil {
		return fmt.Errorf("failed to set claims: %w", err)
	}
	return nil
}

func (s *Service) Repo() *Repo { return s.repo }
