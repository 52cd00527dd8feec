package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/craftconnect/marketplace/internal/service"
)

// ErrorResponse — единый формат ошибки для клиента.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON сериализует ответ; ошибки кодирования только логируются —
// статус к этому моменту уже отправлен.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// respondServiceError маппит типизированные ошибки бизнес-логики в HTTP-статусы.
// Сырые ошибки хранилищ наружу не выходят — всё неопознанное становится 500.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrInsufficientStock):
		status, msg = http.StatusBadRequest, "insufficient stock"
	case errors.Is(err, service.ErrInvalidTransition):
		status, msg = http.StatusBadRequest, "invalid status transition"
	case errors.Is(err, service.ErrNotAuthorized):
		status, msg = http.StatusForbidden, "not authorized"
	case errors.Is(err, service.ErrProductNotFound):
		status, msg = http.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrOrderNotFound):
		status, msg = http.StatusNotFound, "order not found"
	case errors.Is(err, service.ErrSettlementFailed):
		status, msg = http.StatusBadGateway, "settlement failed"
	default:
		status, msg = http.StatusInternalServerError, "internal server error"
	}
	respondJSON(w, logger, status, ErrorResponse{Error: msg})
}
