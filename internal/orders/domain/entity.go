package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the customer pays for an order
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentEWallet        PaymentMethod = "e_wallet"
)

// Role identifies who is acting on an order
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated principal driving an order action
type Actor struct {
	ID   string
	Role Role
}

// OrderItem is a priced snapshot of a product at order time. It is never
// re-derived from the catalog after the order is created.
type OrderItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// Order is the durable aggregate root produced by checkout. Pricing fields
// are computed once at creation; only status, refund and return metadata
// change afterwards, and only through the transition machinery.
type Order struct {
	OrderID           string
	UserID            string
	Items             []OrderItem
	Subtotal          decimal.Decimal
	Tax               decimal.Decimal
	TotalAmount       decimal.Decimal
	PaymentMethod     PaymentMethod
	PaymentReference  string
	PaymentProofRef   string
	Status            Status
	RefundAmount      *decimal.Decimal
	RefundReason      string
	RefundProcessedAt *time.Time
	ReturnRequestedAt *time.Time
	ReturnReason      string
	IdempotencyKey    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder builds a pending order from an authoritative pricing result
func NewOrder(userID string, pricing *Pricing, method PaymentMethod, reference, proofRef, idempotencyKey string, now time.Time) *Order {
	return &Order{
		OrderID:          uuid.New().String(),
		UserID:           userID,
		Items:            pricing.Items,
		Subtotal:         pricing.Subtotal,
		Tax:              pricing.Tax,
		TotalAmount:      pricing.Total,
		PaymentMethod:    method,
		PaymentReference: reference,
		PaymentProofRef:  proofRef,
		Status:           StatusPending,
		IdempotencyKey:   idempotencyKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
