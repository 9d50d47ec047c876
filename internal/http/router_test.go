package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/meeting"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/handlers"
	"neighborhood/backend/internal/presence"
)

// tokens are "uid" or "uid:admin".
type fakeVerifier struct{}

func (fakeVerifier) VerifyIDTokenAndCheckRevoked(_ context.Context, tok string) (*auth.Token, error) {
	if tok == "bad" {
		return nil, errors.New("invalid")
	}
	uid, role, _ := strings.Cut(tok, ":")
	claims := map[string]interface{}{}
	if role == "admin" {
		claims["admin"] = true
	}
	return &auth.Token{UID: uid, Claims: claims}, nil
}

func newTestRouter() http.Handler {
	var store *presence.Store
	return NewRouter(RouterDeps{
		Cfg:      config.Config{AllowedOrigins: []string{"http://localhost:3000"}},
		Auth:     fakeVerifier{},
		UserSvc:  user.NewService(user.NewRepo(nil), nil),
		Presence: handlers.NewPresence(store),
	})
}

func TestRouterAuth(t *testing.T) {
	srv := newTestRouter()
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"healthz is public", http.MethodGet, "/healthz", "", 200},
		{"missing token", http.MethodGet, "/v1/presence?uids=a", "", 401},
		{"invalid token", http.MethodGet, "/v1/presence?uids=a", "bad", 401},
		{"signed in", http.MethodGet, "/v1/presence?uids=a", "u1", 200},
		{"query token on GET", http.MethodGet, "/v1/presence?uids=a&token=u1", "", 200},
		{"admin route needs claim", http.MethodGet, "/v1/admin/users", "u1", 403},
		{"unknown route", http.MethodGet, "/v1/nope", "u1", 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouterRejectsBadJSON(t *testing.T) {
	srv := newTestRouter()
	req := httptest.NewRequest(http.MethodPatch, "/v1/me", strings.NewReader(`{"unknown":1}`))
	req.Header.Set("Authorization", "Bearer u1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMapChatError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: nope", chat.ErrUnauthorized), 403},
		{fmt.Errorf("%w: room", chat.ErrNotFound), 404},
		{fmt.Errorf("%w: text", chat.ErrBadRequest), 400},
		{fmt.Errorf("%w: full", chat.ErrConflict), 409},
		{chat.ErrClosed, 409},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got, _ := mapChatError(tt.err); got != tt.want {
			t.Errorf("mapChatError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMapMeetingErrorCoversRoomErrors(t *testing.T) {
	if got, _ := mapMeetingError(fmt.Errorf("%w: full", meeting.ErrConflict)); got != 409 {
		t.Errorf("meeting conflict = %d", got)
	}
	if got, _ := mapMeetingError(fmt.Errorf("%w: banned", chat.ErrUnauthorized)); got != 403 {
		t.Errorf("room unauthorized = %d", got)
	}
}

func TestSignInProvider(t *testing.T) {
	tests := []struct {
		claims map[string]any
		want   string
	}{
		{map[string]any{"provider": "kakao"}, "kakao"},
		{map[string]any{"firebase": map[string]any{"sign_in_provider": "google.com"}}, "google.com"},
		{map[string]any{}, ""},
	}
	for _, tt := range tests {
		if got := signInProvider(tt.claims); got != tt.want {
			t.Errorf("signInProvider(%v) = %q, want %q", tt.claims, got, tt.want)
		}
	}
}
