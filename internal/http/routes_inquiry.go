package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/inquiry"
	"neighborhood/backend/internal/middleware"
)

func inquiryRoutes(pr chi.Router, svc *inquiry.Service) {
	pr.Get("/v1/inquiries", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.List(r.Context(), au.UID, au.IsAdmin(), queryInt(r, "limit", 50))
		if err != nil {
			status, msg := mapInquiryError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"inquiries": out})
	})

	pr.Post("/v1/inquiries", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in inquiry.CreateInquiryInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Create(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapInquiryError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/inquiries/{inquiryId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.Get(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "inquiryId"))
		if err != nil {
			status, msg := mapInquiryError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/inquiries/{inquiryId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.Delete(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "inquiryId")); err != nil {
			status, msg := mapInquiryError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	pr.With(middleware.RequireAdmin).Post("/v1/inquiries/{inquiryId}/answer", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in inquiry.AnswerInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Answer(r.Context(), au.UID, chi.URLParam(r, "inquiryId"), in)
		if err != nil {
			status, msg := mapInquiryError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})
}
