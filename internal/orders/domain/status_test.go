package domain

import (
	"testing"
	"time"

	"storefront/pkg/errors"
)

func orderInStatus(status Status) *Order {
	return &Order{
		OrderID: "order-1",
		UserID:  "user-1",
		Status:  status,
	}
}

var (
	admin    = Actor{ID: "admin-1", Role: RoleAdmin}
	owner    = Actor{ID: "user-1", Role: RoleCustomer}
	stranger = Actor{ID: "user-2", Role: RoleCustomer}
)

func TestPlanTransition_AdminForwardChain(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusPaid},
		{StatusPending, StatusShipped},
		{StatusPending, StatusCompleted},
		{StatusPaid, StatusShipped},
		{StatusPaid, StatusCompleted},
		{StatusShipped, StatusCompleted},
	}

	for _, tc := range allowed {
		order := orderInStatus(tc.from)
		change, err := order.PlanTransition(tc.to, admin, "", time.Now())
		if err != nil {
			t.Errorf("%s -> %s: expected no error, got %v", tc.from, tc.to, err)
			continue
		}
		if change.From != tc.from || change.To != tc.to {
			t.Errorf("%s -> %s: wrong edge in change: %s -> %s", tc.from, tc.to, change.From, change.To)
		}
	}
}

func TestPlanTransition_NoBackwardMoves(t *testing.T) {
	backward := []struct {
		from, to Status
	}{
		{StatusPaid, StatusPending},
		{StatusShipped, StatusPaid},
		{StatusCompleted, StatusShipped},
		{StatusCancelled, StatusPending},
	}

	for _, tc := range backward {
		order := orderInStatus(tc.from)
		if _, err := order.PlanTransition(tc.to, admin, "", time.Now()); err == nil {
			t.Errorf("%s -> %s: expected error for backward move", tc.from, tc.to)
		}
	}
}

func TestPlanTransition_AdminRefundFromAnyState(t *testing.T) {
	states := []Status{
		StatusPending, StatusPaid, StatusShipped, StatusCompleted,
		StatusCancelled, StatusReturnRequested,
	}

	for _, from := range states {
		order := orderInStatus(from)
		change, err := order.PlanTransition(StatusRefund, admin, "", time.Now())
		if err != nil {
			t.Errorf("%s -> refund: expected admin override to succeed, got %v", from, err)
			continue
		}
		if change.RefundProcessedAt == nil {
			t.Errorf("%s -> refund: expected RefundProcessedAt to be stamped", from)
		}
	}
}

func TestPlanTransition_AdminCancelOnlyFromPending(t *testing.T) {
	if _, err := orderInStatus(StatusPending).PlanTransition(StatusCancelled, admin, "", time.Now()); err != nil {
		t.Errorf("pending -> cancelled by admin: expected no error, got %v", err)
	}

	for _, from := range []Status{StatusPaid, StatusShipped, StatusCompleted} {
		if _, err := orderInStatus(from).PlanTransition(StatusCancelled, admin, "", time.Now()); err == nil {
			t.Errorf("%s -> cancelled: expected error", from)
		}
	}
}

func TestPlanTransition_CustomerCancelWhilePending(t *testing.T) {
	order := orderInStatus(StatusPending)

	change, err := order.PlanTransition(StatusCancelled, owner, "", time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if change.To != StatusCancelled {
		t.Errorf("expected target cancelled, got %s", change.To)
	}

	// Once cancelled, a second cancel is an invalid edge.
	change.Apply(order)
	if _, err := order.PlanTransition(StatusCancelled, owner, "", time.Now()); err == nil {
		t.Error("expected second cancel to fail")
	}
}

func TestPlanTransition_CustomerCancelAfterPendingFails(t *testing.T) {
	for _, from := range []Status{StatusPaid, StatusShipped, StatusCompleted, StatusRefund} {
		if _, err := orderInStatus(from).PlanTransition(StatusCancelled, owner, "", time.Now()); err == nil {
			t.Errorf("%s: expected customer cancel to fail", from)
		}
	}
}

func TestPlanTransition_CustomerReturnRequest(t *testing.T) {
	order := orderInStatus(StatusCompleted)

	change, err := order.PlanTransition(StatusReturnRequested, owner, "does not fit", time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if change.ReturnRequestedAt == nil {
		t.Error("expected ReturnRequestedAt to be stamped")
	}
	if change.ReturnReason != "does not fit" {
		t.Errorf("expected return reason to be carried, got %q", change.ReturnReason)
	}

	// Not valid before completion.
	if _, err := orderInStatus(StatusShipped).PlanTransition(StatusReturnRequested, owner, "", time.Now()); err == nil {
		t.Error("expected return request before completion to fail")
	}
}

func TestPlanTransition_ReturnApproval(t *testing.T) {
	order := orderInStatus(StatusReturnRequested)

	if _, err := order.PlanTransition(StatusRefund, admin, "approved", time.Now()); err != nil {
		t.Errorf("return_requested -> refund by admin: expected no error, got %v", err)
	}

	// Customers may not approve their own return.
	if _, err := order.PlanTransition(StatusRefund, owner, "", time.Now()); !errors.Is(err, errors.CodeForbidden) {
		t.Errorf("expected forbidden error for customer refund, got %v", err)
	}
}

func TestPlanTransition_CustomerCannotTouchForeignOrder(t *testing.T) {
	order := orderInStatus(StatusPending)

	if _, err := order.PlanTransition(StatusCancelled, stranger, "", time.Now()); !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found for foreign order, got %v", err)
	}
}

func TestPlanTransition_UnknownTarget(t *testing.T) {
	order := orderInStatus(StatusPending)

	if _, err := order.PlanTransition(Status("archived"), admin, "", time.Now()); err == nil {
		t.Error("expected error for unrecognized status")
	}
}

func TestPlanTransition_SelfLoopRejected(t *testing.T) {
	order := orderInStatus(StatusPending)

	if _, err := order.PlanTransition(StatusPending, admin, "", time.Now()); err == nil {
		t.Error("expected error for self transition")
	}
}

func TestStatusChangeApply_StampsUpdatedAt(t *testing.T) {
	order := orderInStatus(StatusPending)
	now := time.Now()

	change, err := order.PlanTransition(StatusPaid, admin, "", now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	change.Apply(order)
	if order.Status != StatusPaid {
		t.Errorf("expected status paid, got %s", order.Status)
	}
	if !order.UpdatedAt.Equal(now) {
		t.Errorf("expected updatedAt %v, got %v", now, order.UpdatedAt)
	}
}
