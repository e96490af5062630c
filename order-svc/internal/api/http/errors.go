package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodbox/order-svc/internal/service"

	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOTP):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal failures behind a generic message and logs them.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, service.ErrDelivery):
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	case status == http.StatusInternalServerError:
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		message = "Server error"
	case status == http.StatusUnauthorized:
		message = "unauthorized"
	}
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
