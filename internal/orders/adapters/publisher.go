package adapters

import (
	"context"

	"storefront/internal/orders/domain"
	"storefront/pkg/events"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	event := events.NewOrderCreatedEvent(
		order.OrderID,
		order.UserID,
		order.TotalAmount.String(),
		string(order.PaymentMethod),
		string(order.Status),
		order.CreatedAt,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderStatusChanged publishes a status transition event
func (p *RabbitMQPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from, to domain.Status, actor domain.Actor) error {
	traceID := logger.GetTraceID(ctx)

	event := events.NewOrderStatusChangedEvent(
		order.OrderID,
		order.UserID,
		string(from),
		string(to),
		string(actor.Role),
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderStatusChanged, event)
}

// PublishOrderRefunded publishes a refund processed event
func (p *RabbitMQPublisher) PublishOrderRefunded(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	amount := ""
	if order.RefundAmount != nil {
		amount = order.RefundAmount.String()
	}

	event := events.NewOrderRefundedEvent(
		order.OrderID,
		order.UserID,
		amount,
		order.RefundReason,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderRefunded, event)
}
