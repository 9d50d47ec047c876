package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/meeting"
	"neighborhood/backend/internal/middleware"
)

func meetingRoutes(pr chi.Router, svc *meeting.Service) {
	pr.Get("/v1/meetings", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), meeting.ListQuery{
			Category: r.URL.Query().Get("category"),
			Status:   r.URL.Query().Get("status"),
			Limit:    queryInt(r, "limit", 50),
		})
		if err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"meetings": out})
	})

	pr.Post("/v1/meetings", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in meeting.CreateMeetingInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Create(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/meetings/{meetingId}", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Get(r.Context(), chi.URLParam(r, "meetingId"))
		if err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Patch("/v1/meetings/{meetingId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in meeting.UpdateMeetingInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Update(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "meetingId"), in)
		if err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/meetings/{meetingId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.Delete(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "meetingId")); err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== RSVP =====
	self := func(fn func(ctx context.Context, uid, id string) (*meeting.Meeting, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := fn(r.Context(), au.UID, chi.URLParam(r, "meetingId"))
			if err != nil {
				status, msg := mapMeetingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		}
	}
	pr.Post("/v1/meetings/{meetingId}/apply", self(svc.Apply))
	pr.Post("/v1/meetings/{meetingId}/cancel", self(svc.CancelApplication))
	pr.Post("/v1/meetings/{meetingId}/leave", self(svc.Leave))

	pr.Post("/v1/meetings/{meetingId}/complete", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.Complete(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "meetingId"))
		if err != nil {
			status, msg := mapMeetingError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	host := func(fn func(ctx context.Context, uid string, admin bool, id, applicant string) (*meeting.Meeting, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := fn(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "meetingId"), chi.URLParam(r, "uid"))
			if err != nil {
				status, msg := mapMeetingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		}
	}
	pr.Post("/v1/meetings/{meetingId}/applicants/{uid}/approve", host(svc.Approve))
	pr.Post("/v1/meetings/{meetingId}/applicants/{uid}/reject", host(svc.Reject))
}
