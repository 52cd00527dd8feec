package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftconnect/marketplace/internal/domain/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// LedgerStorage — строго дописываемый журнал переводов. Записи никогда
// не обновляются и не удаляются; репозиторий умышленно не даёт UPDATE/DELETE.
type LedgerStorage interface {
	// Append дописывает запись и возвращает её с присвоенными id и created_at.
	Append(ctx context.Context, entry *models.Transaction) (*models.Transaction, error)
	// FindByUser возвращает записи, где пользователь — отправитель или получатель,
	// новые первыми. Каждый вызов — свежий запрос, а не состояние курсора.
	FindByUser(ctx context.Context, userID int64) ([]*models.Transaction, error)
	FindByOrder(ctx context.Context, orderID int64) (*models.Transaction, error)
}

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) LedgerStorage {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *models.Transaction) (*models.Transaction, error) {
	query := `INSERT INTO transactions (order_id, from_user, to_user, amount, type, status, reference, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		entry.OrderID, entry.FromUserID, entry.ToUserID, entry.Amount,
		entry.Type, entry.Status, entry.Reference, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return entry, nil
}

func (r *ledgerRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, order_id, from_user, to_user, amount, type, status, reference, description, created_at
		FROM transactions
		WHERE from_user = $1 OR to_user = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Transaction
	for rows.Next() {
		entry := &models.Transaction{}
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.FromUserID, &entry.ToUserID,
			&entry.Amount, &entry.Type, &entry.Status, &entry.Reference, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) FindByOrder(ctx context.Context, orderID int64) (*models.Transaction, error) {
	entry := &models.Transaction{}
	query := `
		SELECT id, order_id, from_user, to_user, amount, type, status, reference, description, created_at
		FROM transactions
		WHERE order_id = $1`
	row := r.db.QueryRowContext(ctx, query, orderID)
	if err := row.Scan(&entry.ID, &entry.OrderID, &entry.FromUserID, &entry.ToUserID,
		&entry.Amount, &entry.Type, &entry.Status, &entry.Reference, &entry.Description, &entry.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return entry, nil
}
