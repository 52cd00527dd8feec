package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftconnect/marketplace/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет новый заказ и возвращает его с id и created_at.
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// GetOrdersByBuyerID возвращает заказы, где пользователь — покупатель.
	GetOrdersByBuyerID(ctx context.Context, buyerID int64) ([]*models.Order, error)
	// GetOrdersByArtisanID возвращает заказы на товары данного ремесленника.
	GetOrdersByArtisanID(ctx context.Context, artisanID int64) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	// DeleteOrder удаляет заказ; используется только как компенсация
	// при сорвавшемся расчёте, до того как заказ стал виден кому-либо.
	DeleteOrder(ctx context.Context, id int64) error
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, product_id, buyer_id, artisan_id, quantity, total_price, status, payment_status, shipping_address, created_at"

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `INSERT INTO orders (product_id, buyer_id, artisan_id, quantity, total_price, status, payment_status, shipping_address, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		order.ProductID, order.BuyerID, order.ArtisanID, order.Quantity,
		order.TotalPrice, order.Status, order.PaymentStatus, order.ShippingAddress,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err := scanOrder(row, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByBuyerID(ctx context.Context, buyerID int64) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC", buyerID)
}

func (r *orderRepository) GetOrdersByArtisanID(ctx context.Context, artisanID int64) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE artisan_id = $1 ORDER BY created_at DESC", artisanID)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, arg int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := scanOrder(rows, order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// scanOrder читает строку заказа из Row или Rows.
func scanOrder(row interface{ Scan(dest ...any) error }, order *models.Order) error {
	return row.Scan(&order.ID, &order.ProductID, &order.BuyerID, &order.ArtisanID,
		&order.Quantity, &order.TotalPrice, &order.Status, &order.PaymentStatus,
		&order.ShippingAddress, &order.CreatedAt)
}
