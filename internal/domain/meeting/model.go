package meeting

import (
	"fmt"
	"strings"
	"time"

	"neighborhood/backend/internal/models"
	"neighborhood/backend/internal/utils"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

const (
	maxTitle       = 100
	maxDescription = 5000
	maxCapacity    = 300
)

// Meeting lives at meetings/{id}. A uid is in at most one of Participants
// and Applicants; the host is always Participants[0].
type Meeting struct {
	ID           string              `firestore:"-" json:"id"`
	Title        string              `firestore:"title" json:"title"`
	Description  string              `firestore:"description" json:"description"`
	Location     string              `firestore:"location" json:"location"`
	Category     string              `firestore:"category" json:"category"`
	StartsAt     time.Time           `firestore:"startsAt" json:"startsAt"`
	HostUID      string              `firestore:"hostUid" json:"hostUid"`
	HostName     string              `firestore:"hostName" json:"hostName"`
	Participants []string            `firestore:"participants" json:"participants"`
	Applicants   []string            `firestore:"applicants" json:"applicants"`
	Capacity     int                 `firestore:"capacity" json:"capacity"`
	Status       string              `firestore:"status" json:"status"`
	Files        []models.Attachment `firestore:"files" json:"files"`
	RoomID       string              `firestore:"roomId" json:"roomId"`
	CreatedAt    time.Time           `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `firestore:"updatedAt" json:"updatedAt"`
}

func (m Meeting) IsHost(uid string) bool        { return uid != "" && m.HostUID == uid }
func (m Meeting) IsParticipant(uid string) bool { return utils.ContainsString(m.Participants, uid) }
func (m Meeting) IsApplicant(uid string) bool   { return utils.ContainsString(m.Applicants, uid) }

func (m Meeting) CanManage(uid string, admin bool) bool { return admin || m.IsHost(uid) }

func (m Meeting) Full() bool {
	return m.Capacity > 0 && len(m.Participants) >= m.Capacity
}

func (m Meeting) open() error {
	if m.Status == StatusDone {
		return fmt.Errorf("%w: meeting is already done", ErrConflict)
	}
	return nil
}

// Apply puts uid on the applicant list.
func (m *Meeting) Apply(uid string) error {
	if err := m.open(); err != nil {
		return err
	}
	switch {
	case m.IsHost(uid):
		return fmt.Errorf("%w: the host cannot apply", ErrBadRequest)
	case m.IsParticipant(uid):
		return fmt.Errorf("%w: already a participant", ErrConflict)
	case m.IsApplicant(uid):
		return fmt.Errorf("%w: already applied", ErrConflict)
	case m.Full():
		return fmt.Errorf("%w: meeting is full", ErrConflict)
	}
	m.Applicants = append(m.Applicants, uid)
	return nil
}

func (m *Meeting) CancelApplication(uid string) error {
	if !m.IsApplicant(uid) {
		return fmt.Errorf("%w: no pending application", ErrNotFound)
	}
	m.Applicants = remove(m.Applicants, uid)
	return nil
}

// Approve moves applicant from Applicants to Participants.
func (m *Meeting) Approve(applicant string) error {
	if err := m.open(); err != nil {
		return err
	}
	if !m.IsApplicant(applicant) {
		return fmt.Errorf("%w: no pending application from %s", ErrNotFound, applicant)
	}
	if m.Full() {
		return fmt.Errorf("%w: meeting is full", ErrConflict)
	}
	m.Applicants = remove(m.Applicants, applicant)
	m.Participants = append(m.Participants, applicant)
	return nil
}

func (m *Meeting) Reject(applicant string) error {
	if !m.IsApplicant(applicant) {
		return fmt.Errorf("%w: no pending application from %s", ErrNotFound, applicant)
	}
	m.Applicants = remove(m.Applicants, applicant)
	return nil
}

func (m *Meeting) Leave(uid string) error {
	if m.IsHost(uid) {
		return fmt.Errorf("%w: the host cannot leave; delete the meeting instead", ErrBadRequest)
	}
	if !m.IsParticipant(uid) {
		return fmt.Errorf("%w: not a participant", ErrNotFound)
	}
	m.Participants = remove(m.Participants, uid)
	return nil
}

func (m *Meeting) Complete() error {
	if err := m.open(); err != nil {
		return err
	}
	m.Status = StatusDone
	m.Applicants = []string{}
	return nil
}

func remove(xs []string, v string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

type CreateMeetingInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Category    string              `json:"category"`
	StartsAt    string              `json:"startsAt"`
	Capacity    int                 `json:"capacity"`
	Files       []models.Attachment `json:"files,omitempty"`
}

func (in *CreateMeetingInput) Trim() {
	in.Title = utils.NormalizeText(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = utils.NormalizeText(in.Location)
	in.Category = utils.NormalizeToken(in.Category)
	in.StartsAt = strings.TrimSpace(in.StartsAt)
}

// Build validates the input into a meeting hosted by host.
func (in CreateMeetingInput) Build(hostUID, hostName string, now time.Time) (Meeting, error) {
	if in.Title == "" || utils.RuneLen(in.Title) > maxTitle {
		return Meeting{}, fmt.Errorf("%w: title must be 1 to %d characters", ErrBadRequest, maxTitle)
	}
	if utils.RuneLen(in.Description) > maxDescription {
		return Meeting{}, fmt.Errorf("%w: description is too long", ErrBadRequest)
	}
	if in.Capacity < 0 || in.Capacity > maxCapacity {
		return Meeting{}, fmt.Errorf("%w: capacity must be between 0 and %d", ErrBadRequest, maxCapacity)
	}
	startsAt, err := utils.ParseTime(in.StartsAt)
	if err != nil {
		return Meeting{}, fmt.Errorf("%w: startsAt: %v", ErrBadRequest, err)
	}
	files, err := models.CleanAttachments(in.Files)
	if err != nil {
		return Meeting{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return Meeting{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Category:     in.Category,
		StartsAt:     startsAt.UTC(),
		HostUID:      hostUID,
		HostName:     hostName,
		Participants: []string{hostUID},
		Applicants:   []string{},
		Capacity:     in.Capacity,
		Status:       StatusPending,
		Files:        files,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type UpdateMeetingInput struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Location    *string              `json:"location,omitempty"`
	Category    *string              `json:"category,omitempty"`
	StartsAt    *string              `json:"startsAt,omitempty"`
	Capacity    *int                 `json:"capacity,omitempty"`
	Files       *[]models.Attachment `json:"files,omitempty"`
}

func (in UpdateMeetingInput) Apply(m *Meeting) error {
	if in.Title != nil {
		t := utils.NormalizeText(*in.Title)
		if t == "" || utils.RuneLen(t) > maxTitle {
			return fmt.Errorf("%w: title must be 1 to %d characters", ErrBadRequest, maxTitle)
		}
		m.Title = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if utils.RuneLen(d) > maxDescription {
			return fmt.Errorf("%w: description is too long", ErrBadRequest)
		}
		m.Description = d
	}
	if in.Location != nil {
		m.Location = utils.NormalizeText(*in.Location)
	}
	if in.Category != nil {
		m.Category = utils.NormalizeToken(*in.Category)
	}
	if in.StartsAt != nil {
		t, err := utils.ParseTime(*in.StartsAt)
		if err != nil {
			return fmt.Errorf("%w: startsAt: %v", ErrBadRequest, err)
		}
		m.StartsAt = t.UTC()
	}
	if in.Capacity != nil {
		c := *in.Capacity
		if c < 0 || c > maxCapacity {
			return fmt.Errorf("%w: capacity must be between 0 and %d", ErrBadRequest, maxCapacity)
		}
		if c > 0 && c < len(m.Participants) {
			return fmt.Errorf("%w: capacity is below the participant count", ErrConflict)
		}
		m.Capacity = c
	}
	if in.Files != nil {
		files, err := models.CleanAttachments(*in.Files)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		m.Files = files
	}
	return nil
}

type ListQuery struct {
	Category string
	Status   string
	Limit    int
}

// Normalize folds the category the same way Build and Apply store it.
func (q *ListQuery) Normalize() error {
	q.Category = utils.NormalizeToken(q.Category)
	q.Status = strings.TrimSpace(q.Status)
	if q.Status != "" && q.Status != StatusPending && q.Status != StatusDone {
		return fmt.Errorf("%w: status must be pending or done", ErrBadRequest)
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	return nil
}
