package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/middleware"
)

func chatRoutes(pr chi.Router, svc *chat.Service) {
	// ===== Rooms =====
	pr.Get("/v1/chat/rooms", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListMyRooms(r.Context(), au.UID)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"rooms": out})
	})

	pr.Post("/v1/chat/rooms", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in chat.CreateRoomInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.CreateRoom(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/chat/rooms/{roomId}", roomAction(svc.GetRoom))
	pr.Post("/v1/chat/rooms/{roomId}/join", roomAction(svc.JoinRoom))
	pr.Post("/v1/chat/rooms/{roomId}/leave", roomAction(svc.LeaveRoom))

	pr.Patch("/v1/chat/rooms/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in chat.UpdateRoomInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.UpdateRoom(r.Context(), au.UID, chi.URLParam(r, "roomId"), in)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	pr.Delete("/v1/chat/rooms/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.DeleteRoom(r.Context(), au.UID, chi.URLParam(r, "roomId")); err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Invitations =====
	pr.Get("/v1/chat/invitations", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListMyInvitations(r.Context(), au.UID)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"invitations": out})
	})

	pr.Post("/v1/chat/rooms/{roomId}/invitations", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in struct {
			UID string `json:"uid"`
		}
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Invite(r.Context(), au.UID, chi.URLParam(r, "roomId"), in.UID)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Post("/v1/chat/rooms/{roomId}/invitations/accept", roomAction(svc.AcceptInvitation))

	pr.Post("/v1/chat/rooms/{roomId}/invitations/decline", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.DeclineInvitation(r.Context(), au.UID, chi.URLParam(r, "roomId")); err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Moderation =====
	pr.Post("/v1/chat/rooms/{roomId}/members/{uid}/kick", memberAction(svc.Kick))
	pr.Post("/v1/chat/rooms/{roomId}/members/{uid}/ban", memberAction(svc.Ban))
	pr.Delete("/v1/chat/rooms/{roomId}/members/{uid}/ban", memberAction(svc.Unban))

	// ===== Messages =====
	pr.Get("/v1/chat/rooms/{roomId}/messages", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListMessages(r.Context(), au.UID, chi.URLParam(r, "roomId"), queryTime(r, "before"), queryInt(r, "limit", 50))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"messages": out})
	})

	pr.Post("/v1/chat/rooms/{roomId}/messages", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in chat.SendMessageInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.SendMessage(r.Context(), au.UID, chi.URLParam(r, "roomId"), in)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Post("/v1/chat/rooms/{roomId}/read", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.MarkRead(r.Context(), au.UID, chi.URLParam(r, "roomId")); err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Announcements =====
	pr.Get("/v1/chat/rooms/{roomId}/notices", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListAnnouncements(r.Context(), au.UID, chi.URLParam(r, "roomId"))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"notices": out})
	})

	pr.Post("/v1/chat/rooms/{roomId}/notices", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in chat.CreateAnnouncementInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.CreateAnnouncement(r.Context(), au.UID, chi.URLParam(r, "roomId"), in)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Post("/v1/chat/rooms/{roomId}/notices/{noticeId}/hide", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.HideAnnouncement(r.Context(), au.UID, chi.URLParam(r, "roomId"), chi.URLParam(r, "noticeId")); err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	pr.Delete("/v1/chat/rooms/{roomId}/notices/{noticeId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		if err := svc.DeleteAnnouncement(r.Context(), au.UID, chi.URLParam(r, "roomId"), chi.URLParam(r, "noticeId")); err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Polls =====
	pr.Get("/v1/chat/rooms/{roomId}/polls", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := svc.ListPolls(r.Context(), au.UID, chi.URLParam(r, "roomId"))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"polls": out})
	})

	pr.Post("/v1/chat/rooms/{roomId}/polls", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in chat.CreatePollInput
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.CreatePoll(r.Context(), au.UID, chi.URLParam(r, "roomId"), in)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	pr.Get("/v1/chat/rooms/{roomId}/polls/{pollId}", pollAction(svc.GetPoll))
	pr.Post("/v1/chat/rooms/{roomId}/polls/{pollId}/close", pollAction(svc.ClosePoll))

	pr.Post("/v1/chat/rooms/{roomId}/polls/{pollId}/vote", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		var in struct {
			Options []int `json:"options"`
		}
		if !decode(w, r, &in) {
			return
		}
		out, err := svc.Vote(r.Context(), au.UID, chi.URLParam(r, "roomId"), chi.URLParam(r, "pollId"), in.Options)
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})
}

func roomAction(fn func(ctx context.Context, uid, roomID string) (*chat.Room, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := fn(r.Context(), au.UID, chi.URLParam(r, "roomId"))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	}
}

func memberAction(fn func(ctx context.Context, uid, roomID, target string) (*chat.Room, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := fn(r.Context(), au.UID, chi.URLParam(r, "roomId"), chi.URLParam(r, "uid"))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	}
}

func pollAction(fn func(ctx context.Context, uid, roomID, pollID string) (*chat.PollResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := fn(r.Context(), au.UID, chi.URLParam(r, "roomId"), chi.URLParam(r, "pollId"))
		if err != nil {
			status, msg := mapChatError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	}
}
