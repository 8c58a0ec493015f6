package event

import (
	"context"
	"time"
)

// CustomerCreatedEvent is emitted after a customer row is persisted.
type CustomerCreatedEvent struct {
	CustomerID int64     `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.publish(ctx, routingKeyCustomerCreated, event)
}

// CustomersPurgedEvent is emitted after the inactive customer purge ran.
// DeletedCount carries the number of rows the purge removed and Cutoff the
// order date before which customers counted as inactive.
type CustomersPurgedEvent struct {
	DeletedCount int64     `json:"deletedCount"`
	Cutoff       time.Time `json:"cutoff"`
	Timestamp    time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishCustomersPurged(ctx context.Context, event CustomersPurgedEvent) error {
	return p.publish(ctx, routingKeyCustomersPurged, event)
}
