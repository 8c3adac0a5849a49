package events

import "time"

// Exchange names
const (
	ExchangeOrders = "orders.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderStatusChanged = "order.status_changed"
	RoutingKeyOrderRefunded      = "order.refunded"
)

// OrderCreatedEvent is published when a checkout produces an order
type OrderCreatedEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   OrderCreatedPayload `json:"payload"`
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(orderID, userID, total, paymentMethod, status string, createdAt time.Time, traceID string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderCreated,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderCreatedPayload{
			OrderID:       orderID,
			UserID:        userID,
			Total:         total,
			PaymentMethod: paymentMethod,
			Status:        status,
			CreatedAt:     createdAt,
		},
	}
}

// OrderStatusChangedEvent is published on every order status transition
type OrderStatusChangedEvent struct {
	Version   string                    `json:"version"`
	EventType string                    `json:"event_type"`
	Timestamp time.Time                 `json:"timestamp"`
	TraceID   string                    `json:"trace_id"`
	Payload   OrderStatusChangedPayload `json:"payload"`
}

// OrderStatusChangedPayload contains the transition edge
type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Actor      string `json:"actor"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(orderID, userID, from, to, actor, traceID string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderStatusChanged,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderStatusChangedPayload{
			OrderID:    orderID,
			UserID:     userID,
			FromStatus: from,
			ToStatus:   to,
			Actor:      actor,
		},
	}
}

// OrderRefundedEvent is published when a refund is processed
type OrderRefundedEvent struct {
	Version   string               `json:"version"`
	EventType string               `json:"event_type"`
	Timestamp time.Time            `json:"timestamp"`
	TraceID   string               `json:"trace_id"`
	Payload   OrderRefundedPayload `json:"payload"`
}

// OrderRefundedPayload contains refund data
type OrderRefundedPayload struct {
	OrderID      string `json:"order_id"`
	UserID       string `json:"user_id"`
	RefundAmount string `json:"refund_amount"`
	RefundReason string `json:"refund_reason"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(orderID, userID, amount, reason, traceID string) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderRefunded,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderRefundedPayload{
			OrderID:      orderID,
			UserID:       userID,
			RefundAmount: amount,
			RefundReason: reason,
		},
	}
}
