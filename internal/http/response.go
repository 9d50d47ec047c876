package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"neighborhood/backend/internal/httpjson"
	"neighborhood/backend/internal/utils"
)

type APIError struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, APIError{Message: msg})
}

// decode reads the JSON body into dst and answers 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpjson.Read(r, dst); err != nil {
		Fail(w, 400, "invalid json")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// queryTime parses a ?before= style cursor; zero when absent or invalid.
func queryTime(r *http.Request, key string) time.Time {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return time.Time{}
	}
	t, err := utils.ParseTime(v)
	if err != nil {
		return time.Time{}
	}
	return t
}
