package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the closed set of order states
type Status string

const (
	StatusPending         Status = "pending"
	StatusPaid            Status = "paid"
	StatusShipped         Status = "shipped"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusRefund          Status = "refund"
)

// fulfillmentRank orders the forward chain pending -> paid -> shipped -> completed.
// Statuses outside the chain have no rank.
var fulfillmentRank = map[Status]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusShipped:   2,
	StatusCompleted: 3,
}

// ParseStatus validates a raw status value
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted,
		StatusCancelled, StatusReturnRequested, StatusRefund:
		return Status(value), nil
	}
	return "", NewUnknownStatus(value)
}

// StatusChange is a planned transition: the edge plus the side-effect fields
// it carries. The repository applies it as a conditional update keyed on
// (orderID, From) so a concurrent transition cannot be silently overwritten.
type StatusChange struct {
	From      Status
	To        Status
	UpdatedAt time.Time

	// Set when entering return_requested
	ReturnRequestedAt *time.Time
	ReturnReason      string

	// Set when entering refund
	RefundProcessedAt *time.Time
	RefundAmount      *decimal.Decimal
	RefundReason      string
}

// PlanTransition validates the requested edge against the current status and
// the actor's role and returns the change to apply. Customers may only act
// on their own orders: cancel while pending, or request a return once
// completed. Admins move orders forward along the fulfillment chain, cancel
// pending orders, and may enter refund from any state.
func (o *Order) PlanTransition(target Status, actor Actor, reason string, now time.Time) (*StatusChange, error) {
	if _, err := ParseStatus(string(target)); err != nil {
		return nil, err
	}
	if target == o.Status {
		return nil, NewInvalidTransition(o.Status, target)
	}

	switch actor.Role {
	case RoleCustomer:
		if actor.ID != o.UserID {
			return nil, NewOrderNotFound(o.OrderID)
		}
		switch {
		case target == StatusCancelled && o.Status == StatusPending:
		case target == StatusReturnRequested && o.Status == StatusCompleted:
		case target == StatusCancelled || target == StatusReturnRequested:
			return nil, NewInvalidTransition(o.Status, target)
		default:
			return nil, NewTransitionForbidden(actor.Role, o.Status, target)
		}
	case RoleAdmin:
		if err := planAdminEdge(o.Status, target); err != nil {
			return nil, err
		}
	default:
		return nil, NewTransitionForbidden(actor.Role, o.Status, target)
	}

	change := &StatusChange{
		From:      o.Status,
		To:        target,
		UpdatedAt: now,
	}

	switch target {
	case StatusReturnRequested:
		at := now
		change.ReturnRequestedAt = &at
		change.ReturnReason = reason
	case StatusRefund:
		at := now
		change.RefundProcessedAt = &at
	}

	return change, nil
}

func planAdminEdge(current, target Status) error {
	// Refund is reachable from any state by admin override.
	if target == StatusRefund {
		return nil
	}

	switch target {
	case StatusPaid, StatusShipped, StatusCompleted:
		currentRank, onChain := fulfillmentRank[current]
		if !onChain || fulfillmentRank[target] <= currentRank {
			return NewInvalidTransition(current, target)
		}
		return nil
	case StatusCancelled, StatusReturnRequested:
		if current != StatusPending {
			return NewInvalidTransition(current, target)
		}
		return nil
	}

	// Nothing transitions back to pending.
	return NewInvalidTransition(current, target)
}

// Apply mutates the in-memory order to reflect a change the repository has
// already persisted
func (c *StatusChange) Apply(o *Order) {
	o.Status = c.To
	o.UpdatedAt = c.UpdatedAt
	if c.ReturnRequestedAt != nil {
		o.ReturnRequestedAt = c.ReturnRequestedAt
		o.ReturnReason = c.ReturnReason
	}
	if c.RefundProcessedAt != nil {
		o.RefundProcessedAt = c.RefundProcessedAt
		o.RefundAmount = c.RefundAmount
		o.RefundReason = c.RefundReason
	}
}
