package live

import (
	"context"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/dm"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/httpjson"
	"neighborhood/backend/internal/middleware"
)

// Handler upgrades authenticated requests and bridges one Firestore
// listener per socket.
type Handler struct {
	upgrader *websocket.Upgrader
	chat     *chat.Service
	dm       *dm.Service
	notify   *notifications.Service
	presence Toucher
}

func NewHandler(allowedOrigins []string, chatSvc *chat.Service, dmSvc *dm.Service, notify *notifications.Service, presence Toucher) *Handler {
	return &Handler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		chat:     chatSvc,
		dm:       dmSvc,
		notify:   notify,
		presence: presence,
	}
}

// originChecker allows requests without an Origin header (native clients)
// and browsers from the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// Routes mounts the live endpoints; the caller applies auth.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/v1/live/rooms", h.Rooms)
	r.Get("/v1/live/rooms/{roomId}/messages", h.RoomMessages)
	r.Get("/v1/live/dm/{peerUid}/messages", h.DirectMessages)
	r.Get("/v1/live/notifications", h.Notifications)
}

func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	uid := au.UID
	h.serve(w, r, uid, h.chat.Repo().MyRoomsQuery(uid), func(doc *firestore.DocumentSnapshot) (interface{}, error) {
		room, err := chat.DecodeRoom(doc)
		if err != nil {
			return nil, err
		}
		room.Unread = room.HasUnread(uid)
		return room, nil
	})
}

func (h *Handler) RoomMessages(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	roomID := chi.URLParam(r, "roomId")
	if err := h.chat.CanSubscribe(r.Context(), au.UID, roomID); err != nil {
		switch {
		case chat.IsErrNotFound(err):
			httpjson.Error(w, http.StatusNotFound, err.Error())
		case chat.IsErrUnauthorized(err):
			httpjson.Error(w, http.StatusForbidden, err.Error())
		case chat.IsErrBadRequest(err):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.serve(w, r, au.UID, h.chat.Repo().MessagesQuery(roomID).Limit(50), func(doc *firestore.DocumentSnapshot) (interface{}, error) {
		var m chat.Message
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		return m, nil
	})
}

func (h *Handler) DirectMessages(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	threadID, err := dm.ThreadID(au.UID, chi.URLParam(r, "peerUid"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, au.UID, h.dm.Repo().MessagesQuery(threadID).Limit(50), func(doc *firestore.DocumentSnapshot) (interface{}, error) {
		var m dm.Message
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		return m, nil
	})
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	h.serve(w, r, au.UID, h.notify.NotificationsQuery(au.UID), func(doc *firestore.DocumentSnapshot) (interface{}, error) {
		var n notifications.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, err
		}
		n.ID = doc.Ref.ID
		return n, nil
	})
}

// serve blocks for the life of the socket: the listener runs in Stream,
// writes in WritePump, and ReadPump here detects the peer leaving.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, uid string, q firestore.Query, decode Decoder) {
	if uid == "" {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}

	client := NewClient(uid, conn, h.presence)
	ctx, cancel := context.WithCancel(r.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Stream(ctx, q, decode, client.Send)
	}()
	go client.WritePump()

	client.ReadPump()
	cancel()
	<-done
}
