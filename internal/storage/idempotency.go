package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

// IdempotencyStorage хранит соответствие клиентского ключа идемпотентности
// созданному заказу. Ключ привязан к покупателю: один и тот же ключ от разных
// пользователей — разные записи.
type IdempotencyStorage interface {
	Lookup(ctx context.Context, key string, buyerID int64) (int64, error)
	Save(ctx context.Context, key string, buyerID int64, orderID int64) error
}

type idempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) IdempotencyStorage {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) Lookup(ctx context.Context, key string, buyerID int64) (int64, error) {
	var orderID int64
	row := r.db.QueryRowContext(ctx,
		"SELECT order_id FROM idempotency_keys WHERE key = $1 AND buyer_id = $2", key, buyerID)
	if err := row.Scan(&orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrIdempotencyKeyNotFound
		}
		return 0, err
	}
	return orderID, nil
}

func (r *idempotencyRepository) Save(ctx context.Context, key string, buyerID int64, orderID int64) error {
	query := `INSERT INTO idempotency_keys (key, buyer_id, order_id, created_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (key, buyer_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, key, buyerID, orderID); err != nil {
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}
