package event

import (
	"context"
	"time"
)

// ReportGeneratedEvent is emitted after the periodic summary report ran.
// Revenue is a decimal string with two fraction digits.
type ReportGeneratedEvent struct {
	Customers int64     `json:"customers"`
	Orders    int64     `json:"orders"`
	Revenue   string    `json:"revenue"`
	Timestamp time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishReportGenerated(ctx context.Context, event ReportGeneratedEvent) error {
	return p.publish(ctx, routingKeyReportGenerated, event)
}
