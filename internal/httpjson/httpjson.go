package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies read through Read.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Read when the request has no body at all.
var ErrEmptyBody = errors.New("empty body")

func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Read decodes one JSON object, rejecting unknown fields and oversized bodies.
func Read(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]interface{}{"error": msg})
}
