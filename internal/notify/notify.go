// Package notify публикует события завершённых расчётов во внешние системы
// (уведомления, дашборды). Для ядра расчётов это чёрный ящик: сбой публикации
// не влияет на исход покупки.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/craftconnect/marketplace/internal/domain/models"
)

const EventOrderSettled = "OrderSettled"

// Envelope — обёртка события в топике расчётов.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderSettledPayload — данные завершённого расчёта.
type OrderSettledPayload struct {
	OrderID    int64 `json:"order_id"`
	ProductID  int64 `json:"product_id"`
	BuyerID    int64 `json:"buyer_id"`
	ArtisanID  int64 `json:"artisan_id"`
	Quantity   int   `json:"quantity"`
	TotalPrice int64 `json:"total_price"`
}

// KafkaNotifier пишет события в kafka. Ключ сообщения — id заказа, чтобы
// события одного заказа попадали в одну партицию.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (n *KafkaNotifier) OrderSettled(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(OrderSettledPayload{
		OrderID:    order.ID,
		ProductID:  order.ProductID,
		BuyerID:    order.BuyerID,
		ArtisanID:  order.ArtisanID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	value, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		EventType:  EventOrderSettled,
		OccurredAt: time.Now().UTC(),
		Producer:   "settlement-api",
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Noop — заглушка для окружений без kafka и для тестов.
type Noop struct{}

func (Noop) OrderSettled(ctx context.Context, order *models.Order) error { return nil }
