package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/notice"
	"neighborhood/backend/internal/middleware"
)

func noticeRoutes(pr chi.Router, svc *notice.Service) {
	pr.Get("/v1/notices", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), notice.ListQuery{
			Limit:  queryInt(r, "limit", 20),
			Before: queryTime(r, "before"),
			Q:      r.URL.Query().Get("q"),
		})
		if err != nil {
			status, msg := mapNoticeError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"notices": out})
	})

	pr.Post("/v1/notices", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in notice.CreateNoticeInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Create(r.Context(), au.UID, au.IsAdmin(), in)
		if err != nil {
			status, msg := mapNoticeError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/notices/{noticeId}", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Get(r.Context(), chi.URLParam(r, "noticeId"))
		if err != nil {
			status, msg := mapNoticeError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Patch("/v1/notices/{noticeId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in notice.UpdateNoticeInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Update(r.Context(), au.UID, chi.URLParam(r, "noticeId"), in)
		if err != nil {
			status, msg := mapNoticeError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/notices/{noticeId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.Delete(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "noticeId")); err != nil {
			status, msg := mapNoticeError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})
}
