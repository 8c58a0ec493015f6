package event

import "context"

// NoopPublisher satisfies EventPublisher without a broker behind it. It is
// wired in when RabbitMQ is not configured so callers never hold a nil
// publisher.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) PublishCustomerCreated(_ context.Context, _ CustomerCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishCustomersPurged(_ context.Context, _ CustomersPurgedEvent) error {
	return nil
}

func (NoopPublisher) PublishOrderCreated(_ context.Context, _ OrderCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishReportGenerated(_ context.Context, _ ReportGeneratedEvent) error {
	return nil
}

var _ EventPublisher = (*NoopPublisher)(nil)
