package utils

import (
	"encoding/json"
	"net/http"

	"pack-backend/internal/apperrors"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error body with the HTTP status derived from the
// error's kind. 423 marks a busy customer: the client should retry.
func Error(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	var status int
	switch kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindInvalidState:
		status = http.StatusConflict
	case apperrors.KindConflict:
		status = http.StatusLocked
	default:
		status = http.StatusInternalServerError
	}

	JSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
