package handlers

import (
	"log/slog"
	"net/http"

	"github.com/craftconnect/marketplace/internal/jwt-new/jwtmiddleware"
	"github.com/craftconnect/marketplace/internal/service"
)

// WalletHandler обрабатывает GET /api/wallet: текущий остаток и история
// по леджеру для аутентифицированного пользователя.
func WalletHandler(log *slog.Logger, wallet service.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WalletHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		resp, err := wallet.GetWallet(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get wallet", slog.Any("error", err))
			respondServiceError(w, logger, err)
			return
		}

		respondJSON(w, logger, http.StatusOK, resp)
	}
}
