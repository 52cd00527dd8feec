package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WalletStorage — кэш текущего остатка кошелька (не история операций,
// история живёт в леджере). Изменяется только движком расчётов.
type WalletStorage interface {
	// Credit атомарно прибавляет amount к балансу. Вычисление выполняется
	// на стороне БД, поэтому конкурентные зачисления одному ремесленнику
	// складываются без потерь.
	Credit(ctx context.Context, userID int64, amount int64) error
	GetBalance(ctx context.Context, userID int64) (int64, error)
}

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) WalletStorage {
	return &walletRepository{db: db}
}

func (r *walletRepository) Credit(ctx context.Context, userID int64, amount int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2", amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *walletRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	row := r.db.QueryRowContext(ctx, "SELECT wallet_balance FROM users WHERE id = $1", userID)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}
