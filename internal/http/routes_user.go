package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/middleware"
)

func userRoutes(pr chi.Router, svc *user.Service) {
	// 初回アクセス時にプロフィールを作る
	pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.Ensure(r.Context(), au.UID, au.Name, au.Email, signInProvider(au.Claims))
		if err != nil {
			status, msg := mapUserError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{
			"profile": out,
			"admin":   au.IsAdmin(),
		})
	})

	pr.Patch("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in user.UpdateProfileInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.UpdateProfile(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapUserError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Put("/v1/me/push-token", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in struct {
			Token string `json:"token"`
		}
		if !decode(w, r, &in) {
			return
		}
		if err := svc.SetPushToken(r.Context(), au.UID, in.Token); err != nil {
			status, msg := mapUserError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	pr.Delete("/v1/me/push-token", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.ClearPushToken(r.Context(), au.UID); err != nil {
			status, msg := mapUserError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	pr.Get("/v1/users/{uid}", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetPublic(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			status, msg := mapUserError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	// ===== Admin =====
	pr.Group(func(ar chi.Router) {
		ar.Use(middleware.RequireAdmin)

		ar.Get("/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
			out, err := svc.List(r.Context(), queryInt(r, "limit", 100))
			if err != nil {
				status, msg := mapUserError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"users": out})
		})

		ar.Post("/v1/admin/users/{uid}/disable", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := svc.Disable(r.Context(), au.UID, chi.URLParam(r, "uid")); err != nil {
				status, msg := mapUserError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "disabled": true})
		})

		ar.Post("/v1/admin/users/{uid}/enable", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := svc.Enable(r.Context(), au.UID, chi.URLParam(r, "uid")); err != nil {
				status, msg := mapUserError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true, "disabled": false})
		})
	})
}

// signInProvider prefers the relay's provider claim over Firebase's own.
func signInProvider(claims map[string]any) string {
	if p, ok := claims["provider"].(string); ok && p != "" {
		return p
	}
	if fb, ok := claims["firebase"].(map[string]any); ok {
		if p, ok := fb["sign_in_provider"].(string); ok {
			return strings.TrimSpace(p)
		}
	}
	return ""
}
