package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/storage"
)

// CatalogService — управление каталогом: создание товаров и смена цены.
// Остатки и sold_count этот сервис не трогает, это территория движка расчётов.
type CatalogService interface {
	CreateProduct(ctx context.Context, ownerID int64, name, description string, price int64, stock int) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	// UpdatePrice меняет цену товара; разрешено только владельцу. На уже
	// созданные заказы не влияет — там цена снята на момент покупки.
	UpdatePrice(ctx context.Context, productID, requesterID int64, newPrice int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

func (s *catalogService) CreateProduct(ctx context.Context, ownerID int64, name, description string, price int64, stock int) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("ownerID", ownerID))

	if name == "" || price < 0 || stock < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRequest)
	}

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	})
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", product.ID))
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrProductNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) UpdatePrice(ctx context.Context, productID, requesterID int64, newPrice int64) error {
	const op = "service.CatalogService.UpdatePrice"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID), slog.Int64("requesterID", requesterID))

	if newPrice < 0 {
		return fmt.Errorf("%s: price must be non-negative: %w", op, ErrInvalidRequest)
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, ErrProductNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if product.OwnerID != requesterID {
		logger.Warn("price update by non-owner rejected")
		return fmt.Errorf("%s: %w", op, ErrNotAuthorized)
	}

	if err := s.productRepo.UpdatePrice(ctx, productID, newPrice); err != nil {
		logger.Error("failed to update price", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update price: %w", op, err)
	}

	logger.Info("price updated", slog.Int64("newPrice", newPrice))
	return nil
}
