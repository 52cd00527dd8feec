package models

import "time"

// Типы записей в леджере.
const (
	TxTypePurchase = "purchase"
	TxTypeRefund   = "refund"
)

// Статусы записей в леджере.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Transaction представляет запись в леджере — неизменяемый след перевода средств
// между двумя пользователями, привязанный к заказу. Запись со статусом completed
// никогда не редактируется и не удаляется: исправления оформляются
// новой компенсирующей записью (refund).
type Transaction struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	FromUserID  int64     `json:"from_user_id"` // покупатель
	ToUserID    int64     `json:"to_user_id"`   // ремесленник
	Amount      int64     `json:"amount"`       // = order.TotalPrice, в минорных единицах
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference"` // внешний идентификатор (uuid)
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
