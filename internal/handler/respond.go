package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lifelog/lifelog/internal/apperr"
)

// problem is the error body every failing request gets: a stable code from
// the apperr taxonomy plus a human-readable message.
type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusForCode = map[apperr.Code]int{
	apperr.CodeNotFound:        http.StatusNotFound,
	apperr.CodeValidation:      http.StatusBadRequest,
	apperr.CodeQuotaExceeded:   http.StatusBadRequest,
	apperr.CodeUnsupportedType: http.StatusBadRequest,
	apperr.CodeTooLarge:        http.StatusBadRequest,
	apperr.CodeUnauthorized:    http.StatusUnauthorized,
	apperr.CodePersistence:     http.StatusInternalServerError,
	apperr.CodeStorage:         http.StatusBadGateway,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status, ok := statusForCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			slog.Error("request failed", "code", appErr.Code, "error", err)
		}
		writeJSON(w, status, problem{Code: string(appErr.Code), Message: appErr.Message})
		return
	}

	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, problem{Code: "internal", Message: "internal server error"})
}
