package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"neighborhood/backend/internal/utils"
)

const (
	maxDisplayName = 40
	maxNickname    = 20
)

// Profile lives at users/{uid}.
type Profile struct {
	UID         string    `firestore:"uid" json:"uid"`
	Email       string    `firestore:"email,omitempty" json:"email,omitempty"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Nickname    string    `firestore:"nickname,omitempty" json:"nickname,omitempty"`
	Phone       string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	PhotoURL    string    `firestore:"photoURL,omitempty" json:"photoURL,omitempty"`
	Provider    string    `firestore:"provider,omitempty" json:"provider,omitempty"`
	Disabled    bool      `firestore:"disabled" json:"disabled"`
	PushToken   string    `firestore:"pushToken,omitempty" json:"-"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Label is the name shown next to messages: nickname when set.
func (p Profile) Label() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.UID
}

// PublicProfile is what other members get to see.
type PublicProfile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Nickname    string `json:"nickname,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Disabled    bool   `json:"disabled"`
}

func (p Profile) Public() PublicProfile {
	return PublicProfile{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Nickname:    p.Nickname,
		PhotoURL:    p.PhotoURL,
		Disabled:    p.Disabled,
	}
}

// UpdateProfileInput represents input for updating a profile
type UpdateProfileInput struct {
	DisplayName *string `json:"displayName,omitempty"`
	Nickname    *string `json:"nickname,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

func (in *UpdateProfileInput) Trim() {
	for _, p := range []*string{in.DisplayName, in.Nickname, in.Phone, in.PhotoURL} {
		if p != nil {
			*p = utils.NormalizeText(*p)
		}
	}
}

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9-]{6,18}$`)

func (in UpdateProfileInput) Validate() error {
	if in.DisplayName != nil {
		if *in.DisplayName == "" {
			return fmt.Errorf("%w: displayName cannot be empty", ErrBadRequest)
		}
		if utils.RuneLen(*in.DisplayName) > maxDisplayName {
			return fmt.Errorf("%w: displayName must be at most %d characters", ErrBadRequest, maxDisplayName)
		}
	}
	if in.Nickname != nil && utils.RuneLen(*in.Nickname) > maxNickname {
		return fmt.Errorf("%w: nickname must be at most %d characters", ErrBadRequest, maxNickname)
	}
	if in.Phone != nil && *in.Phone != "" && !phoneRe.MatchString(*in.Phone) {
		return fmt.Errorf("%w: phone must contain digits and dashes only", ErrBadRequest)
	}
	if in.PhotoURL != nil && *in.PhotoURL != "" && !strings.HasPrefix(*in.PhotoURL, "https://") {
		return fmt.Errorf("%w: photoURL must be https", ErrBadRequest)
	}
	return nil
}

func (in UpdateProfileInput) Empty() bool {
	return in.DisplayName == nil && in.Nickname == nil && in.Phone == nil && in.PhotoURL == nil
}
