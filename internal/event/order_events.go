package event

import (
	"context"
	"time"
)

// OrderCreatedEvent is emitted after an order and its product lines are
// persisted. TotalAmount is a decimal string with two fraction digits.
type OrderCreatedEvent struct {
	OrderID     int64     `json:"orderId"`
	CustomerID  int64     `json:"customerId"`
	ProductIDs  []int64   `json:"productIds"`
	TotalAmount string    `json:"totalAmount"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return p.publish(ctx, routingKeyOrderCreated, event)
}
