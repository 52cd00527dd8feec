package models

// User представляет пользователя (покупателя или ремесленника).
// WalletBalance — текущий остаток кошелька в минорных единицах,
// изменяется только движком расчётов.
type User struct {
	ID            int64
	Email         string
	PassHash      []byte
	WalletBalance int64
}
