package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MaxAttachments is the per-document cap for attached files.
const MaxAttachments = 10

var ErrInvalidAttachment = errors.New("invalid attachment")

// Attachment is the record stored on posts, meetings, inquiries and messages
// after a file has been uploaded.
type Attachment struct {
	URL          string `json:"url" firestore:"url"`
	OriginalName string `json:"originalName" firestore:"originalName"`
	Type         string `json:"type" firestore:"type"`
	Size         int64  `json:"size" firestore:"size"`
}

func (a *Attachment) Trim() {
	a.URL = strings.TrimSpace(a.URL)
	a.OriginalName = strings.TrimSpace(a.OriginalName)
	a.Type = strings.TrimSpace(a.Type)
}

func (a Attachment) Validate() error {
	if a.URL == "" || a.OriginalName == "" {
		return fmt.Errorf("%w: url and originalName are required", ErrInvalidAttachment)
	}
	u, err := url.Parse(a.URL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: url must be an absolute https url", ErrInvalidAttachment)
	}
	if a.Size < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrInvalidAttachment)
	}
	return nil
}

// CleanAttachments trims and validates a client-supplied file list.
// A nil input yields an empty, non-nil slice so documents always carry the field.
func CleanAttachments(in []Attachment) ([]Attachment, error) {
	if len(in) > MaxAttachments {
		return nil, fmt.Errorf("%w: at most %d files", ErrInvalidAttachment, MaxAttachments)
	}
	out := make([]Attachment, 0, len(in))
	for _, a := range in {
		a.Trim()
		if err := a.Validate(); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
