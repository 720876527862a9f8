package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"quiztrack/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps the domain error taxonomy onto HTTP status codes.
// Anything unrecognized is a storage-layer failure: log it, leak nothing.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrScoreOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: unauthenticatedMessage})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "teacher role required"})
	case errors.Is(err, domain.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// unauthenticatedMessage is shared by every 401 path. Unknown users, wrong
// passwords, missing, expired, and tampered tokens all read the same.
const unauthenticatedMessage = "authentication failed"

// decodeBody fills dst from a JSON body or, for form posts, via the provided
// form extractor. Original clients submit URL-encoded forms; newer ones JSON.
func decodeBody(r *http.Request, dst any, fromForm func(r *http.Request) error) error {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		defer r.Body.Close()
		return json.NewDecoder(r.Body).Decode(dst)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	return fromForm(r)
}
