package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
)

type fakeVerifier struct {
	tokens  map[string]*auth.Token
	revoked map[string]bool
}

func (f fakeVerifier) VerifyIDTokenAndCheckRevoked(_ context.Context, idToken string) (*auth.Token, error) {
	if f.revoked[idToken] {
		return nil, errors.New("ID token has been revoked")
	}
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("bad token")
}

func newVerifier() fakeVerifier {
	return fakeVerifier{
		tokens: map[string]*auth.Token{
			"member-token":   {UID: "u1", Claims: map[string]interface{}{"email": "u1@example.com", "name": "Kim"}},
			"admin-token":    {UID: "a1", Claims: map[string]interface{}{"admin": true}},
			"disabled-token": {UID: "u2", Claims: map[string]interface{}{}},
		},
		// u2 was disabled after this token was minted
		revoked: map[string]bool{"disabled-token": true},
	}
}

func TestWithAuth(t *testing.T) {
	var seen *AuthUser
	h := WithAuth(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetAuthUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		method     string
		target     string
		header     string
		wantStatus int
		wantUID    string
	}{
		{name: "missing header", method: "GET", target: "/", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: "GET", target: "/", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", method: "GET", target: "/", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid bearer", method: "POST", target: "/", header: "Bearer member-token", wantStatus: http.StatusNoContent, wantUID: "u1"},
		{name: "lowercase scheme", method: "GET", target: "/", header: "bearer member-token", wantStatus: http.StatusNoContent, wantUID: "u1"},
		{name: "query token on GET", method: "GET", target: "/?token=admin-token", wantStatus: http.StatusNoContent, wantUID: "a1"},
		{name: "revoked token", method: "GET", target: "/", header: "Bearer disabled-token", wantStatus: http.StatusUnauthorized},
		{name: "revoked token in query", method: "GET", target: "/?token=disabled-token", wantStatus: http.StatusUnauthorized},
		{name: "query token ignored on POST", method: "POST", target: "/?token=admin-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantUID == "" {
				return
			}
			if seen == nil || seen.UID != tt.wantUID {
				t.Fatalf("auth user = %+v, want uid %q", seen, tt.wantUID)
			}
		})
	}
}

func TestWithAuthCopiesClaims(t *testing.T) {
	var seen *AuthUser
	h := WithAuth(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetAuthUser(r.Context())
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen.Email != "u1@example.com" || seen.Name != "Kim" {
		t.Errorf("got email=%q name=%q", seen.Email, seen.Name)
	}
	if seen.IsAdmin() {
		t.Error("member should not be admin")
	}
}

func TestRequireAdmin(t *testing.T) {
	h := WithAuth(newVerifier())(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	for token, want := range map[string]int{
		"member-token": http.StatusForbidden,
		"admin-token":  http.StatusOK,
	} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", token, w.Code, want)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{"nil", nil, false},
		{"empty", map[string]any{}, false},
		{"admin flag", map[string]any{"admin": true}, true},
		{"admin flag false", map[string]any{"admin": false}, false},
		{"role", map[string]any{"role": "admin"}, true},
		{"other role", map[string]any{"role": "member"}, false},
		{"roles map", map[string]any{"roles": map[string]interface{}{"admin": true}}, true},
		{"roles array", map[string]any{"roles": []interface{}{"member", "admin"}}, true},
		{"roles array without admin", map[string]any{"roles": []interface{}{"member"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.claims); got != tt.want {
				t.Errorf("IsAdmin(%v) = %v, want %v", tt.claims, got, tt.want)
			}
		})
	}
}
