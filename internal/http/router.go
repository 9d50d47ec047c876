package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/dm"
	"neighborhood/backend/internal/domain/inquiry"
	"neighborhood/backend/internal/domain/meeting"
	"neighborhood/backend/internal/domain/notice"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/proposal"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/handlers"
	"neighborhood/backend/internal/live"
	"neighborhood/backend/internal/middleware"
	"neighborhood/backend/internal/relay"
)

type RouterDeps struct {
	Cfg  config.Config
	Auth middleware.TokenVerifier

	UserSvc          *user.Service
	NoticeSvc        *notice.Service
	MeetingSvc       *meeting.Service
	ProposalSvc      *proposal.Service
	InquirySvc       *inquiry.Service
	ChatSvc          *chat.Service
	DMSvc            *dm.Service
	NotificationsSvc *notifications.Service

	Presence *handlers.Presence
	Uploads  *handlers.Uploads
	Live     *live.Handler
	// Relay is nil when Kakao is not configured.
	Relay *relay.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// Kakao relay (no auth required)
	if d.Relay != nil {
		d.Relay.Routes(r)
	}

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Auth))

		if d.UserSvc != nil {
			userRoutes(pr, d.UserSvc)
		}
		if d.NoticeSvc != nil {
			noticeRoutes(pr, d.NoticeSvc)
		}
		if d.MeetingSvc != nil {
			meetingRoutes(pr, d.MeetingSvc)
		}
		if d.ProposalSvc != nil {
			proposalRoutes(pr, d.ProposalSvc)
		}
		if d.InquirySvc != nil {
			inquiryRoutes(pr, d.InquirySvc)
		}
		if d.ChatSvc != nil {
			chatRoutes(pr, d.ChatSvc)
		}
		if d.DMSvc != nil {
			dmRoutes(pr, d.DMSvc)
		}
		if d.NotificationsSvc != nil {
			notificationRoutes(pr, d.NotificationsSvc)
		}

		// ===== Presence =====
		if d.Presence != nil {
			pr.Post("/v1/presence/heartbeat", d.Presence.Heartbeat)
			pr.Get("/v1/presence", d.Presence.Lookup)
			pr.Delete("/v1/presence", d.Presence.Offline)
		}

		// ===== Uploads =====
		if d.Uploads != nil {
			pr.Post("/v1/uploads/sign", d.Uploads.Sign)
			pr.Post("/v1/uploads/confirm", d.Uploads.Confirm)
		}

		// ===== Live (WebSocket) =====
		if d.Live != nil {
			d.Live.Routes(pr)
		}
	})

	return r
}
