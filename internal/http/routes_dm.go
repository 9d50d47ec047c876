package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/dm"
	"neighborhood/backend/internal/middleware"
)

func dmRoutes(pr chi.Router, svc *dm.Service) {
	pr.Get("/v1/dm", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListThreads(r.Context(), au.UID)
		if err != nil {
			status, msg := mapDMError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"threads": out})
	})

	pr.Get("/v1/dm/{peerUid}/messages", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListMessages(r.Context(), au.UID, chi.URLParam(r, "peerUid"), queryTime(r, "before"), queryInt(r, "limit", 50))
		if err != nil {
			status, msg := mapDMError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"messages": out})
	})

	pr.Post("/v1/dm/{peerUid}/messages", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in dm.SendInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Send(r.Context(), au.UID, chi.URLParam(r, "peerUid"), in)
		if err != nil {
			status, msg := mapDMError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Post("/v1/dm/{peerUid}/read", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.MarkRead(r.Context(), au.UID, chi.URLParam(r, "peerUid")); err != nil {
			status, msg := mapDMError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})
}
