package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/folios/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error *apperr.Error `json:"error"`
}

// writeAppError maps an application error code to an HTTP status and
// writes the standard error envelope.
func writeAppError(w http.ResponseWriter, err error) {
	ae := apperr.From(err)

	status := http.StatusInternalServerError
	switch ae.Code {
	case apperr.CodeNotFound, apperr.CodeChapterNotFound:
		status = http.StatusNotFound
	case apperr.CodeInvalidFormat:
		status = http.StatusUnprocessableEntity
	case apperr.CodeReadError:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errResponse{Error: ae})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]string{"code": "BAD_REQUEST", "message": msg},
	})
}
