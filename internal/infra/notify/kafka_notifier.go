package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventOrderReceived = "order.received"
	EventOrderPaid     = "order.paid"
)

// Writer *kafka.Writer 的子集, 方便測試替換
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderEvent struct {
	Event         string            `json:"event"`
	OrderID       uint              `json:"order_id"`
	Email         string            `json:"email"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	Items         []OrderEventItem  `json:"items"`
	Status        model.OrderStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID   *uint           `json:"product_id,omitempty"`
	VariantID   *uint           `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
}

// KafkaNotifier 以訂單 id 為 key 發布事件, 同一訂單的事件落在同一 partition
type KafkaNotifier struct {
	writer   Writer
	currency string
	now      func() time.Time
}

var _ Notifier = (*KafkaNotifier)(nil)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}
}

func NewKafkaNotifier(writer Writer, currency string) *KafkaNotifier {
	return &KafkaNotifier{
		writer:   writer,
		currency: currency,
		now:      time.Now,
	}
}

func (k *KafkaNotifier) OrderReceived(ctx context.Context, order *model.Order) error {
	return k.publish(ctx, EventOrderReceived, order)
}

func (k *KafkaNotifier) OrderPaid(ctx context.Context, order *model.Order) error {
	return k.publish(ctx, EventOrderPaid, order)
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

func (k *KafkaNotifier) publish(ctx context.Context, event string, order *model.Order) error {
	payload := OrderEvent{
		Event:         event,
		OrderID:       order.ID,
		Email:         order.Email,
		Total:         order.Total,
		Currency:      k.currency,
		PaymentMethod: order.PaymentMethod,
		CouponCode:    order.CouponCode,
		Status:        order.Status,
		Items:         make([]OrderEventItem, 0, len(order.Items)),
		OccurredAt:    k.now().UTC(),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderEventItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Qty:         item.Qty,
		})
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(order.ID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event, err)
	}
	return nil
}
