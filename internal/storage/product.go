package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftconnect/marketplace/internal/domain/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStorage описывает методы каталога: чтение товаров и атомарное
// резервирование/возврат остатков.
type ProductStorage interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	// UpdatePrice меняет цену товара. Выполняется одним оператором и потому
	// не может перемежаться с резервированием остатков по тому же товару.
	UpdatePrice(ctx context.Context, id int64, newPrice int64) error
	// ReserveStock атомарно проверяет stock >= quantity и в том же операторе
	// списывает остаток и увеличивает sold_count. При нехватке — ErrInsufficientStock,
	// без побочных эффектов.
	ReserveStock(ctx context.Context, id int64, quantity int) error
	// ReleaseStock — компенсирующая операция для отката резервирования.
	ReleaseStock(ctx context.Context, id int64, quantity int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := "SELECT id, owner_id, name, description, price, stock, sold_count, created_at FROM products WHERE id = $1"
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SoldCount, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, owner_id, name, description, price, stock, sold_count, created_at
		FROM products
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SoldCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (owner_id, name, description, price, stock, sold_count, created_at)
	          VALUES ($1, $2, $3, $4, $5, 0, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, p.OwnerID, p.Name, p.Description, p.Price, p.Stock).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (r *productRepository) UpdatePrice(ctx context.Context, id int64, newPrice int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET price = $1 WHERE id = $2", newPrice, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ReserveStock выполняет условное списание одним оператором: проверка
// stock >= quantity и само списание неразделимы, поэтому два конкурентных
// резервирования одного товара не могут вместе списать больше, чем было.
// Чтение-в-память с последующей безусловной записью здесь недопустимо.
func (r *productRepository) ReserveStock(ctx context.Context, id int64, quantity int) error {
	query := `UPDATE products
	          SET stock = stock - $2, sold_count = sold_count + $2
	          WHERE id = $1 AND stock >= $2`
	res, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// ноль строк — либо товара нет, либо не хватило остатка
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, id int64, quantity int) error {
	query := `UPDATE products
	          SET stock = stock + $2, sold_count = sold_count - $2
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
