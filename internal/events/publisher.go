package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
)

// OrderCompleted is emitted once per successfully created order.
type OrderCompleted struct {
	OrderID       int64              `json:"order_id"`
	CustomerID    int64              `json:"customer_id"`
	Items         []domain.OrderLine `json:"items"`
	TotalAmount   string             `json:"total_amount"`
	Currency      string             `json:"currency"`
	PromotionCode string             `json:"promotion_code,omitempty"`
	Paid          bool               `json:"paid"`
	CompletedAt   time.Time          `json:"completed_at"`
}

type Publisher interface {
	PublishOrderCompleted(ctx context.Context, event OrderCompleted) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront-orders",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event OrderCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.OrderID)), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.completed")},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCompleted(context.Context, OrderCompleted) error {
	return nil
}
