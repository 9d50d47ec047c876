package relay

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/httpjson"
)

// TokenMinter is satisfied by *auth.Client.
type TokenMinter interface {
	CustomTokenWithClaims(ctx context.Context, uid string, devClaims map[string]interface{}) (string, error)
}

// ProfileStore is satisfied by *user.Service.
type ProfileStore interface {
	Ensure(ctx context.Context, uid, displayName, email, provider string) (*user.Profile, error)
}

type Handler struct {
	kakao    *Kakao
	minter   TokenMinter
	profiles ProfileStore
}

func NewHandler(kakao *Kakao, minter TokenMinter, profiles ProfileStore) *Handler {
	return &Handler{kakao: kakao, minter: minter, profiles: profiles}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Health)
	r.Post("/auth/kakao/callback", h.KakaoCallback)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type callbackReq struct {
	Code string `json:"code"`
}

// KakaoCallback turns a Kakao authorization code into a Firebase custom token.
func (h *Handler) KakaoCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackReq
	if err := httpjson.Read(r, &req); err != nil && err != httpjson.ErrEmptyBody {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		httpjson.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	ku, err := h.kakao.User(r.Context(), code)
	if err != nil {
		log.Printf("[relay] kakao: %v", err)
		httpjson.Error(w, http.StatusBadGateway, "kakao login failed")
		return
	}
	uid := ku.UID()

	if h.profiles != nil {
		if _, err := h.profiles.Ensure(r.Context(), uid, ku.Nickname(), ku.KakaoAccount.Email, "kakao"); err != nil {
			// sign-in still works; the profile is created on the next login
			log.Printf("[relay] ensure profile %s: %v", uid, err)
		}
	}

	tok, err := h.minter.CustomTokenWithClaims(r.Context(), uid, map[string]interface{}{"provider": "kakao"})
	if err != nil {
		log.Printf("[relay] mint %s: %v", uid, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"customToken": tok})
}
