package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/storage"
)

// OrderService — запросные операции над заказами и смена статуса ремесленником.
type OrderService interface {
	OrdersByBuyer(ctx context.Context, buyerID int64) ([]*models.Order, error)
	OrdersByArtisan(ctx context.Context, artisanID int64) ([]*models.Order, error)
	// UpdateStatus меняет статус заказа. Запрашивающий обязан быть ремесленником
	// заказа, переход должен быть допустим по машине состояний.
	UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, requesterID int64) (*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage) OrderService {
	return &orderService{log: log, orderRepo: orderRepo}
}

func (s *orderService) OrdersByBuyer(ctx context.Context, buyerID int64) ([]*models.Order, error) {
	const op = "service.OrderService.OrdersByBuyer"
	orders, err := s.orderRepo.GetOrdersByBuyerID(ctx, buyerID)
	if err != nil {
		s.log.Error("failed to get buyer orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) OrdersByArtisan(ctx context.Context, artisanID int64) ([]*models.Order, error) {
	const op = "service.OrderService.OrdersByArtisan"
	orders, err := s.orderRepo.GetOrdersByArtisanID(ctx, artisanID)
	if err != nil {
		s.log.Error("failed to get artisan orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, requesterID int64) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.String("newStatus", string(newStatus)),
		slog.Int64("requesterID", requesterID),
	)

	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, newStatus, ErrInvalidRequest)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if order.ArtisanID != requesterID {
		logger.Warn("status update by non-artisan rejected")
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthorized)
	}

	if !models.CanTransition(order.Status, newStatus) {
		logger.Warn("illegal status transition", slog.String("from", string(order.Status)))
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, order.Status, newStatus, ErrInvalidTransition)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update status: %w", op, err)
	}

	order.Status = newStatus
	logger.Info("order status updated")
	return order, nil
}
