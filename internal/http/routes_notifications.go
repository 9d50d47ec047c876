package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/middleware"
)

type bulkNotificationInput struct {
	UIDs  []string          `json:"uids"`
	Title string            `json:"title"`
	Body  string            `json:"body,omitempty"`
	Type  string            `json:"type,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

func notificationRoutes(pr chi.Router, svc *notifications.Service) {
	pr.Get("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
		out, err := svc.GetNotifications(r.Context(), au.UID, unreadOnly, queryInt(r, "limit", 50))
		if err != nil {
			status, msg := mapNotificationsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Post("/v1/notifications/markRead", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in notifications.MarkReadInput
		if !decode(w, r, &in) {
			return
		}
		count, err := svc.MarkRead(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapNotificationsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true, "marked": count})
	})

	pr.Delete("/v1/notifications/{notificationId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.DeleteNotification(r.Context(), au.UID, chi.URLParam(r, "notificationId")); err != nil {
			status, msg := mapNotificationsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Admin =====
	pr.Group(func(ar chi.Router) {
		ar.Use(middleware.RequireAdmin)

		ar.Post("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			var in notifications.CreateNotificationInput
			if !decode(w, r, &in) {
				return
			}
			id, err := svc.CreateNotification(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"success": true, "id": id})
		})

		ar.Post("/v1/notifications/bulk", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			var in bulkNotificationInput
			if !decode(w, r, &in) {
				return
			}
			if len(in.UIDs) == 0 {
				Fail(w, 400, "uids is required")
				return
			}
			count, err := svc.Notify(r.Context(), in.UIDs, notifications.Message{
				SenderUID: au.UID,
				Title:     in.Title,
				Body:      in.Body,
				Type:      in.Type,
				Data:      in.Data,
			})
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "sent": count})
		})
	})
}
