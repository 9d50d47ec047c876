package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"neighborhood/backend/internal/httpjson"
	"neighborhood/backend/internal/middleware"
)

// maxPresenceLookup bounds a single ?uids= query.
const maxPresenceLookup = 200

// PresenceStore is satisfied by *presence.Store.
type PresenceStore interface {
	Touch(ctx context.Context, uid string) error
	Clear(ctx context.Context, uid string) error
	Online(ctx context.Context, uids []string) (map[string]bool, error)
}

type Presence struct {
	store PresenceStore
}

func NewPresence(store PresenceStore) *Presence {
	return &Presence{store: store}
}

// Heartbeat marks the caller online for another TTL window.
func (h *Presence) Heartbeat(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	if err := h.store.Touch(r.Context(), au.UID); err != nil {
		log.Printf("[presence] touch %s: %v", au.UID, err)
		httpjson.Error(w, http.StatusServiceUnavailable, "presence unavailable")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"ok": true})
}

// Offline is sent by clients on sign-out or page hide.
func (h *Presence) Offline(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	if err := h.store.Clear(r.Context(), au.UID); err != nil {
		log.Printf("[presence] clear %s: %v", au.UID, err)
		httpjson.Error(w, http.StatusServiceUnavailable, "presence unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lookup answers GET ?uids=a,b with {"online": {"a": true, "b": false}}.
func (h *Presence) Lookup(w http.ResponseWriter, r *http.Request) {
	uids := parseUIDs(r.URL.Query().Get("uids"))
	if len(uids) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "uids is required")
		return
	}
	if len(uids) > maxPresenceLookup {
		httpjson.Error(w, http.StatusBadRequest, "too many uids")
		return
	}
	online, err := h.store.Online(r.Context(), uids)
	if err != nil {
		log.Printf("[presence] lookup: %v", err)
		httpjson.Error(w, http.StatusServiceUnavailable, "presence unavailable")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"online": online})
}

func parseUIDs(raw string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, u := range strings.Split(raw, ",") {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
