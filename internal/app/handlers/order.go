package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/jwt-new/jwtmiddleware"
	"github.com/craftconnect/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
)

// CreateOrderRequest — входной JSON покупки.
type CreateOrderRequest struct {
	ProductID       int64  `json:"productId" validate:"required,gt=0"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

// OrderResponse — заказ плюс признак записи в леджер.
type OrderResponse struct {
	Order          *models.Order `json:"order"`
	LedgerRecorded bool          `json:"ledgerRecorded"`
}

// CreateOrderHandler обрабатывает POST /api/orders.
// Ключ идемпотентности клиент передаёт в заголовке Idempotency-Key;
// повтор с тем же ключом возвращает прежний заказ без повторного расчёта.
func CreateOrderHandler(log *slog.Logger, settlement service.SettlementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "validation error"})
			return
		}

		buyerID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := settlement.Purchase(r.Context(), service.PurchaseRequest{
			BuyerID:         buyerID,
			ProductID:       req.ProductID,
			Quantity:        req.Quantity,
			ShippingAddress: req.ShippingAddress,
			IdempotencyKey:  r.Header.Get("Idempotency-Key"),
		})
		if err != nil {
			logger.Error("purchase failed", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		status := http.StatusCreated
		if result.Replayed {
			status = http.StatusOK
		}
		respondJSON(w, logger, status, OrderResponse{
			Order:          result.Order,
			LedgerRecorded: result.LedgerRecorded,
		})
	}
}

// UpdateOrderStatusRequest — входной JSON смены статуса.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatusHandler обрабатывает PUT /api/orders/{id}.
// Менять статус может только ремесленник заказа.
func UpdateOrderStatusHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid order id", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "validation error"})
			return
		}

		requesterID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := orders.UpdateStatus(r.Context(), orderID, models.OrderStatus(req.Status), requesterID)
		if err != nil {
			logger.Error("failed to update order status", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusOK, order)
	}
}

// ListOrdersHandler обрабатывает GET /api/orders?role=buyer|artisan.
func ListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var list []*models.Order
		var err error
		switch role := r.URL.Query().Get("role"); role {
		case "artisan":
			list, err = orders.OrdersByArtisan(r.Context(), userID)
		case "", "buyer":
			list, err = orders.OrdersByBuyer(r.Context(), userID)
		default:
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "unknown role"})
			return
		}
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusOK, list)
	}
}
