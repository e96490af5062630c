package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodbox/menu-svc/internal/service"

	"go.uber.org/zap"
)

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Food not found")
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
