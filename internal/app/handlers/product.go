package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/craftconnect/marketplace/internal/jwt-new/jwtmiddleware"
	"github.com/craftconnect/marketplace/internal/service"
	"github.com/go-chi/chi/v5"
)

// CreateProductRequest — входной JSON создания товара.
// Цена в минорных единицах.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// CreateProductHandler обрабатывает POST /api/products.
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req CreateProductRequest
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

		ownerID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		product, err := catalog.CreateProduct(r.Context(), ownerID, req.Name, req.Description, req.Price, req.Stock)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusCreated, product)
	}
}

// ListProductsHandler обрабатывает GET /api/products.
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusOK, products)
	}
}

// UpdatePriceRequest — входной JSON смены цены.
type UpdatePriceRequest struct {
	Price int64 `json:"price" validate:"gte=0"`
}

// UpdatePriceHandler обрабатывает PUT /api/products/{id}/price.
// Менять цену может только владелец товара.
func UpdatePriceHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdatePriceHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid product id", slog.Any("error", err))
			respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
			return
		}

		var req UpdatePriceRequest
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

		if err := catalog.UpdatePrice(r.Context(), productID, requesterID, req.Price); err != nil {
			logger.Error("failed to update price", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusOK, map[string]string{"message": "price updated"})
	}
}
