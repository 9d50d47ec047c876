package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"neighborhood/backend/internal/middleware"
	"neighborhood/backend/internal/presence"

	"firebase.google.com/go/v4/auth"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDTokenAndCheckRevoked(_ context.Context, tok string) (*auth.Token, error) {
	return &auth.Token{UID: tok, Claims: map[string]interface{}{}}, nil
}

func newPresenceServer(t *testing.T) (*miniredis.Miniredis, http.Handler) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewPresence(presence.New(rdb))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /heartbeat", h.Heartbeat)
	mux.HandleFunc("DELETE /", h.Offline)
	mux.HandleFunc("GET /", h.Lookup)
	return mr, middleware.WithAuth(fakeVerifier{})(mux)
}

func do(h http.Handler, method, target, uid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+uid)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPresenceHeartbeatAndLookup(t *testing.T) {
	mr, srv := newPresenceServer(t)

	if rec := do(srv, http.MethodPost, "/heartbeat", "u1"); rec.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rec.Code)
	}
	if !mr.Exists("presence:u1") {
		t.Fatal("heartbeat should write presence key")
	}

	rec := do(srv, http.MethodGet, "/?uids=u1,u2,u1", "u2")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d", rec.Code)
	}
	var body struct {
		Online map[string]bool `json:"online"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"u1": true, "u2": false}
	if !reflect.DeepEqual(body.Online, want) {
		t.Errorf("online = %v, want %v", body.Online, want)
	}

	if rec := do(srv, http.MethodDelete, "/", "u1"); rec.Code != http.StatusNoContent {
		t.Fatalf("offline status = %d", rec.Code)
	}
	if mr.Exists("presence:u1") {
		t.Error("offline should delete presence key")
	}
}

func TestPresenceLookupRequiresUIDs(t *testing.T) {
	_, srv := newPresenceServer(t)
	if rec := do(srv, http.MethodGet, "/?uids=,,", "u1"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPresenceDisabledReportsOffline(t *testing.T) {
	var store *presence.Store
	h := NewPresence(store)
	req := httptest.NewRequest(http.MethodGet, "/?uids=a", nil)
	rec := httptest.NewRecorder()
	h.Lookup(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Online map[string]bool `json:"online"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if online, ok := body.Online["a"]; !ok || online {
		t.Errorf("online = %v", body.Online)
	}
}
