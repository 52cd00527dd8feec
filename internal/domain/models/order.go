package models

import "time"

// Статусы заказа. Переходы ограничены картой validNext.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Статусы оплаты. Оплата завершается в момент расчёта, внешний шлюз не моделируется.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Разрешённые переходы статусов: pending → confirmed → shipped → delivered,
// отмена возможна только из pending и confirmed.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
	OrderCancelled: {},
}

// CanTransition сообщает, допустим ли переход заказа из статуса from в to.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ValidStatus проверяет, что строка является известным статусом заказа.
func ValidStatus(s OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// Order представляет заказ, созданный при покупке.
// TotalPrice — снимок price × quantity на момент покупки, после создания неизменен.
type Order struct {
	ID              int64         `json:"id"`
	ProductID       int64         `json:"product_id"`
	BuyerID         int64         `json:"buyer_id"`
	ArtisanID       int64         `json:"artisan_id"`
	Quantity        int           `json:"quantity"`
	TotalPrice      int64         `json:"total_price"` // в минорных единицах
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ShippingAddress string        `json:"shipping_address"`
	CreatedAt       time.Time     `json:"created_at"`
}
