package http

import (
	"encoding/json"
	"net/http"

	"studytracker/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before touching the response, so an encode failure
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldError, err.Error())
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to write response",
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
