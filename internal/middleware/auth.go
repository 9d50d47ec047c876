package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

type AuthUser struct {
	UID    string
	Email  string
	Name   string
	Claims map[string]any
}

func (u *AuthUser) IsAdmin() bool {
	return u != nil && IsAdmin(u.Claims)
}

// TokenVerifier is satisfied by *auth.Client. Revoked sessions and disabled
// accounts are rejected, not only expired tokens.
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// WithAuth verifies a Firebase ID token from "Authorization: Bearer <token>".
// Browsers cannot set headers on WebSocket upgrades, so a ?token= query
// parameter is accepted for GET requests.
func WithAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idToken := bearerToken(r)
			if idToken == "" {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}

			tok, err := verifier.VerifyIDTokenAndCheckRevoked(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}
			if v, ok := tok.Claims["name"].(string); ok {
				au.Name = v
			}

			ctx := context.WithValue(r.Context(), authUserKey, au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after WithAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		au, ok := GetAuthUser(r.Context())
		if !ok || !au.IsAdmin() {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len("bearer ") && strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if r.Method == http.MethodGet {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

// IsAdmin checks if the user has admin role in their claims
func IsAdmin(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	if role, ok := claims["role"].(string); ok && role == "admin" {
		return true
	}
	// roles map
	if roles, ok := claims["roles"].(map[string]interface{}); ok {
		if b, ok := roles["admin"].(bool); ok && b {
			return true
		}
	}
	// roles array
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if str, ok := r.(string); ok && str == "admin" {
				return true
			}
		}
	}
	return false
}
