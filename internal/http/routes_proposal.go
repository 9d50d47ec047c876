package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/proposal"
	"neighborhood/backend/internal/middleware"
)

func proposalRoutes(pr chi.Router, svc *proposal.Service) {
	pr.Get("/v1/proposals", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), proposal.ListQuery{
			Category: r.URL.Query().Get("category"),
			Status:   r.URL.Query().Get("status"),
			Limit:    queryInt(r, "limit", 50),
		})
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"proposals": out})
	})

	pr.Post("/v1/proposals", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in proposal.CreateProposalInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Create(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Get(r.Context(), chi.URLParam(r, "proposalId"))
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Patch("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in proposal.UpdateProposalInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Update(r.Context(), au.UID, chi.URLParam(r, "proposalId"), in)
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.Delete(r.Context(), au.UID, au.IsAdmin(), chi.URLParam(r, "proposalId")); err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// 賛同 / 取り消し
	pr.Post("/v1/proposals/{proposalId}/agree", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.Agree(r.Context(), au.UID, chi.URLParam(r, "proposalId"))
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/proposals/{proposalId}/agree", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.Withdraw(r.Context(), au.UID, chi.URLParam(r, "proposalId"))
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.With(middleware.RequireAdmin).Post("/v1/proposals/{proposalId}/status", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in struct {
			Status string `json:"status"`
		}
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.SetStatus(r.Context(), au.UID, chi.URLParam(r, "proposalId"), in.Status)
		if err != nil {
			status, msg := mapProposalError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})
}
