package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/user"
)

type fakeMinter struct {
	uid    string
	claims map[string]interface{}
	err    error
}

func (f *fakeMinter) CustomTokenWithClaims(_ context.Context, uid string, claims map[string]interface{}) (string, error) {
	f.uid, f.claims = uid, claims
	if f.err != nil {
		return "", f.err
	}
	return "custom-" + uid, nil
}

type fakeProfiles struct {
	uid, name, email, provider string
}

func (f *fakeProfiles) Ensure(_ context.Context, uid, displayName, email, provider string) (*user.Profile, error) {
	f.uid, f.name, f.email, f.provider = uid, displayName, email, provider
	return &user.Profile{UID: uid, DisplayName: displayName}, nil
}

// kakaoServer fakes the token and user-info endpoints.
func kakaoServer(t *testing.T, tokenStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" || r.Form.Get("client_id") != "rest-key" {
			tokenStatus = http.StatusBadRequest
		}
		if tokenStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"kakao-at","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer kakao-at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":12345,"kakao_account":{"email":"kim@example.com","profile":{"nickname":"철수"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(srv *httptest.Server, minter *fakeMinter, profiles *fakeProfiles) http.Handler {
	k := NewKakao(config.KakaoConfig{
		RestAPIKey:  "rest-key",
		RedirectURI: "http://localhost:3000/kakao",
		TokenURL:    srv.URL + "/oauth/token",
		UserInfoURL: srv.URL + "/v2/user/me",
	}, srv.Client())
	r := chi.NewRouter()
	NewHandler(k, minter, profiles).Routes(r)
	return r
}

func TestKakaoCallback(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		tokenStatus int
		mintErr     error
		wantStatus  int
	}{
		{name: "success", body: `{"code":"good-code"}`, tokenStatus: http.StatusOK, wantStatus: http.StatusOK},
		{name: "missing code", body: `{}`, tokenStatus: http.StatusOK, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: ``, tokenStatus: http.StatusOK, wantStatus: http.StatusBadRequest},
		{name: "kakao rejects code", body: `{"code":"bad-code"}`, tokenStatus: http.StatusOK, wantStatus: http.StatusBadGateway},
		{name: "kakao down", body: `{"code":"good-code"}`, tokenStatus: http.StatusInternalServerError, wantStatus: http.StatusBadGateway},
		{name: "mint fails", body: `{"code":"good-code"}`, tokenStatus: http.StatusOK, mintErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := kakaoServer(t, tt.tokenStatus)
			minter := &fakeMinter{err: tt.mintErr}
			profiles := &fakeProfiles{}
			h := newTestRouter(srv, minter, profiles)

			req := httptest.NewRequest(http.MethodPost, "/auth/kakao/callback", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got["customToken"] != "custom-kakao:12345" {
				t.Errorf("customToken = %q", got["customToken"])
			}
			if minter.claims["provider"] != "kakao" {
				t.Errorf("claims = %v", minter.claims)
			}
			if profiles.uid != "kakao:12345" || profiles.name != "철수" || profiles.email != "kim@example.com" || profiles.provider != "kakao" {
				t.Errorf("profile upsert = %+v", profiles)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := kakaoServer(t, http.StatusOK)
	h := newTestRouter(srv, &fakeMinter{}, &fakeProfiles{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Errorf("GET / = %d %s", rec.Code, rec.Body.String())
	}
}

func TestKakaoUserNickname(t *testing.T) {
	var u kakaoUser
	u.Properties.Nickname = " 영희 "
	if u.Nickname() != "영희" {
		t.Errorf("Nickname = %q", u.Nickname())
	}
	u.KakaoAccount.Profile.Nickname = "철수"
	if u.Nickname() != "철수" {
		t.Errorf("Nickname = %q", u.Nickname())
	}
}
