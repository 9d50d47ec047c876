package http

import (
	"errors"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/dm"
	"neighborhood/backend/internal/domain/inquiry"
	"neighborhood/backend/internal/domain/meeting"
	"neighborhood/backend/internal/domain/notice"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/proposal"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/models"
)

func mapUserError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case user.IsErrUnauthorized(err):
		return 403, err.Error()
	case user.IsErrNotFound(err):
		return 404, err.Error()
	case user.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapNoticeError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case notice.IsErrUnauthorized(err):
		return 403, err.Error()
	case notice.IsErrNotFound(err):
		return 404, err.Error()
	case notice.IsErrBadRequest(err), errors.Is(err, models.ErrInvalidAttachment):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapMeetingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case meeting.IsErrUnauthorized(err), chat.IsErrUnauthorized(err):
		return 403, err.Error()
	case meeting.IsErrNotFound(err), chat.IsErrNotFound(err):
		return 404, err.Error()
	case meeting.IsErrBadRequest(err), errors.Is(err, models.ErrInvalidAttachment):
		return 400, err.Error()
	case meeting.IsErrConflict(err), chat.IsErrConflict(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapProposalError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case proposal.IsErrUnauthorized(err):
		return 403, err.Error()
	case proposal.IsErrNotFound(err):
		return 404, err.Error()
	case proposal.IsErrBadRequest(err):
		return 400, err.Error()
	case proposal.IsErrConflict(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapInquiryError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case inquiry.IsErrUnauthorized(err):
		return 403, err.Error()
	case inquiry.IsErrNotFound(err):
		return 404, err.Error()
	case inquiry.IsErrBadRequest(err), errors.Is(err, models.ErrInvalidAttachment):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapChatError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case chat.IsErrUnauthorized(err):
		return 403, err.Error()
	case chat.IsErrNotFound(err):
		return 404, err.Error()
	case chat.IsErrBadRequest(err), errors.Is(err, models.ErrInvalidAttachment):
		return 400, err.Error()
	case chat.IsErrConflict(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapDMError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case dm.IsErrUnauthorized(err):
		return 403, err.Error()
	case dm.IsErrNotFound(err):
		return 404, err.Error()
	case dm.IsErrBadRequest(err), chat.IsErrBadRequest(err), errors.Is(err, models.ErrInvalidAttachment):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapNotificationsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case notifications.IsErrNotFound(err):
		return 404, err.Error()
	case notifications.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
