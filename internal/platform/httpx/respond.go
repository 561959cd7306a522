// Package httpx provides HTTP response utilities for the JSON API.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trainhub/trainhub/internal/shared"
)

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the envelope for responses that only carry a message.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code. A body is written
// even for 204 to match what clients of this API already parse.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Message sends a message envelope.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes int64 = 1 << 20

// MsgBodyTooLarge is returned when a request body exceeds MaxBodyBytes.
const MsgBodyTooLarge = "Request body too large"

// DecodeJSON decodes JSON request body into the target struct. Unknown fields
// are ignored; a missing body decodes to the zero value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return shared.Validation(MsgBodyTooLarge)
		}
		var domainErr *shared.Error
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return shared.Validation("Malformed request body: %v", err)
	}
	return nil
}

// PathID parses an integer URL parameter. It returns nil when the parameter is
// absent from the route.
func PathID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.Validation("Invalid %s", name)
	}
	return &id, nil
}

// QueryID parses an optional integer query parameter.
func QueryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.Validation("Invalid %s filter: %s", name, raw)
	}
	return &id, nil
}
