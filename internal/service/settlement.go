package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/storage"
)

// Notifier уведомляет внешние системы о завершённом расчёте (best-effort).
type Notifier interface {
	OrderSettled(ctx context.Context, order *models.Order) error
}

// PurchaseRequest — входной контракт покупки. Личность покупателя передаётся
// явно, никакого неявного контекста сессии.
type PurchaseRequest struct {
	BuyerID         int64
	ProductID       int64
	Quantity        int
	ShippingAddress string
	// IdempotencyKey — необязательный клиентский ключ. При повторе с тем же
	// ключом возвращается ранее созданный заказ без побочных эффектов.
	IdempotencyKey string
}

// PurchaseResult — подтверждённый заказ. LedgerRecorded=false означает, что
// кошелёк пополнен, но запись в леджер не удалась и требуется ручная сверка.
type PurchaseResult struct {
	Order          *models.Order
	LedgerRecorded bool
	Replayed       bool
}

// SettlementService исполняет покупку как единую бизнес-операцию:
// списание остатка + зачисление в кошелёк + запись в леджер + создание заказа.
type SettlementService interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
}

type settlementService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	walletRepo  storage.WalletStorage
	ledgerRepo  storage.LedgerStorage
	orderRepo   storage.OrderStorage
	idemRepo    storage.IdempotencyStorage
	notifier    Notifier
}

func NewSettlementService(
	log *slog.Logger,
	productRepo storage.ProductStorage,
	walletRepo storage.WalletStorage,
	ledgerRepo storage.LedgerStorage,
	orderRepo storage.OrderStorage,
	idemRepo storage.IdempotencyStorage,
	notifier Notifier,
) SettlementService {
	return &settlementService{
		log:         log,
		productRepo: productRepo,
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		orderRepo:   orderRepo,
		idemRepo:    idemRepo,
		notifier:    notifier,
	}
}

// Purchase проводит расчёт по покупке. Хранилища товаров, кошельков и леджера
// независимы и не делят одну ACID-транзакцию, поэтому операция построена как
// цепочка атомарных шагов с явными компенсациями:
//
//  1. резервирование остатка (условное списание — единственный шаг с
//     естественным атомарным примитивом, поэтому он первый: перепродать
//     распроданный товар нельзя ни при каком исходе остальных шагов);
//  2. снимок totalPrice = price × quantity по цене на момент резервирования;
//  3. создание заказа (paymentStatus сразу completed, внешний шлюз не моделируется);
//  4. зачисление в кошелёк ремесленника; при сбое — вернуть резерв, удалить
//     заказ и отдать ErrSettlementFailed: остаток не должен тихо теряться;
//  5. запись в леджер; сбой здесь не компенсируется (зачисление могло быть уже
//     замечено), а громко логируется и помечается в результате для ручной сверки.
func (s *settlementService) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	const op = "service.SettlementService.Purchase"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("buyerID", req.BuyerID),
		slog.Int64("productID", req.ProductID),
		slog.Int("quantity", req.Quantity),
	)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%s: quantity must be positive: %w", op, ErrInvalidRequest)
	}
	if req.ShippingAddress == "" {
		return nil, fmt.Errorf("%s: shipping address is required: %w", op, ErrInvalidRequest)
	}

	// Повтор с тем же ключом идемпотентности — возвращаем прежний результат.
	if req.IdempotencyKey != "" {
		orderID, err := s.idemRepo.Lookup(ctx, req.IdempotencyKey, req.BuyerID)
		if err == nil {
			logger.Info("idempotent replay, returning existing order", slog.Int64("orderID", orderID))
			return s.replay(ctx, orderID)
		}
		if !errors.Is(err, storage.ErrIdempotencyKeyNotFound) {
			return nil, fmt.Errorf("%s: failed to check idempotency key: %w", op, err)
		}
	}

	// Цена снимается до резервирования; последующие изменения цены на этот
	// заказ уже не влияют. Самопокупка (buyerID == ownerID) допускается.
	product, err := s.productRepo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrProductNotFound)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	logger.Info("starting settlement")

	if err := s.productRepo.ReserveStock(ctx, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientStock):
			logger.Warn("insufficient stock", slog.Int("stock", product.Stock))
			return nil, fmt.Errorf("%s: %w", op, ErrInsufficientStock)
		case errors.Is(err, storage.ErrProductNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrProductNotFound)
		default:
			logger.Error("failed to reserve stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to reserve stock: %w", op, err)
		}
	}

	totalPrice := product.Price * int64(req.Quantity)

	order, err := s.orderRepo.CreateOrder(ctx, &models.Order{
		ProductID:       product.ID,
		BuyerID:         req.BuyerID,
		ArtisanID:       product.OwnerID,
		Quantity:        req.Quantity,
		TotalPrice:      totalPrice,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentCompleted,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		logger.Error("failed to create order, releasing stock", slog.Any("error", err))
		s.compensateStock(ctx, logger, req.ProductID, req.Quantity)
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := s.walletRepo.Credit(ctx, product.OwnerID, totalPrice); err != nil {
		logger.Error("failed to credit artisan wallet, compensating",
			slog.Int64("artisanID", product.OwnerID), slog.Any("error", err))
		s.compensateStock(ctx, logger, req.ProductID, req.Quantity)
		if delErr := s.orderRepo.DeleteOrder(ctx, order.ID); delErr != nil {
			logger.Error("failed to delete order during compensation",
				slog.Int64("orderID", order.ID), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%s: %w", op, ErrSettlementFailed)
	}

	ledgerRecorded := true
	_, err = s.ledgerRepo.Append(ctx, &models.Transaction{
		OrderID:     order.ID,
		FromUserID:  req.BuyerID,
		ToUserID:    product.OwnerID,
		Amount:      totalPrice,
		Type:        models.TxTypePurchase,
		Status:      models.TxStatusCompleted,
		Reference:   uuid.NewString(),
		Description: fmt.Sprintf("purchase of %q x%d", product.Name, req.Quantity),
	})
	if err != nil {
		// Кошелёк уже пополнен, а аудиторского следа нет — откатывать зачисление
		// поздно. Состояние деградировавшее, но обнаружимое: сигналим для ручной
		// сверки и возвращаем заказ с пометкой.
		ledgerRecorded = false
		logger.Error("ALERT: ledger append failed after wallet credit, manual reconciliation required",
			slog.Int64("orderID", order.ID),
			slog.Int64("artisanID", product.OwnerID),
			slog.Int64("amount", totalPrice),
			slog.Any("error", err))
	}

	if req.IdempotencyKey != "" {
		if err := s.idemRepo.Save(ctx, req.IdempotencyKey, req.BuyerID, order.ID); err != nil {
			logger.Error("failed to save idempotency key", slog.Any("error", err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.OrderSettled(ctx, order); err != nil {
			logger.Warn("failed to publish settlement notification", slog.Any("error", err))
		}
	}

	logger.Info("settlement completed",
		slog.Int64("orderID", order.ID),
		slog.Int64("totalPrice", totalPrice),
		slog.Bool("ledgerRecorded", ledgerRecorded))
	return &PurchaseResult{Order: order, LedgerRecorded: ledgerRecorded}, nil
}

// compensateStock возвращает зарезервированный остаток. Сбой компенсации —
// это потерянный товар, поэтому логируем на уровне error.
func (s *settlementService) compensateStock(ctx context.Context, logger *slog.Logger, productID int64, quantity int) {
	if err := s.productRepo.ReleaseStock(ctx, productID, quantity); err != nil {
		logger.Error("failed to release reserved stock during compensation",
			slog.Int64("productID", productID),
			slog.Int("quantity", quantity),
			slog.Any("error", err))
	}
}

// replay восстанавливает результат ранее проведённой покупки по её заказу.
func (s *settlementService) replay(ctx context.Context, orderID int64) (*PurchaseResult, error) {
	const op = "service.SettlementService.replay"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}
	ledgerRecorded := true
	if _, err := s.ledgerRepo.FindByOrder(ctx, orderID); err != nil {
		if !errors.Is(err, storage.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%s: failed to check ledger: %w", op, err)
		}
		ledgerRecorded = false
	}
	return &PurchaseResult{Order: order, LedgerRecorded: ledgerRecorded, Replayed: true}, nil
}
