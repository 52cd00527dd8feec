package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/craftconnect/marketplace/internal/domain/models"
	"github.com/craftconnect/marketplace/internal/storage"
)

// WalletService — чтение кошелька: текущий остаток и история по леджеру.
type WalletService interface {
	GetWallet(ctx context.Context, userID int64) (*WalletResponse, error)
}

// WalletResponse — остаток и записи леджера пользователя, новые первыми.
type WalletResponse struct {
	Balance int64                 `json:"balance"`
	History []*models.Transaction `json:"history"`
}

type walletService struct {
	log        *slog.Logger
	walletRepo storage.WalletStorage
	ledgerRepo storage.LedgerStorage
}

func NewWalletService(log *slog.Logger, walletRepo storage.WalletStorage, ledgerRepo storage.LedgerStorage) WalletService {
	return &walletService{log: log, walletRepo: walletRepo, ledgerRepo: ledgerRepo}
}

func (s *walletService) GetWallet(ctx context.Context, userID int64) (*WalletResponse, error) {
	const op = "service.WalletService.GetWallet"
	s.log.Info("getting wallet", slog.String("op", op), slog.Int64("userID", userID))

	balance, err := s.walletRepo.GetBalance(ctx, userID)
	if err != nil {
		s.log.Error("failed to get balance", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get balance: %w", op, err)
	}

	history, err := s.ledgerRepo.FindByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to get ledger history", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get history: %w", op, err)
	}

	return &WalletResponse{Balance: balance, History: history}, nil
}
