package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/orders/application"
	"storefront/internal/orders/domain"
	"storefront/pkg/errors"
	"storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the order routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("/checkout", middleware.RequireAuth(), h.Checkout)
		orders.GET("", middleware.RequireAuth(), h.ListOrders)
		orders.GET("/:orderId", middleware.RequireAuth(), h.GetOrder)
		orders.POST("/cancel/:orderId", middleware.RequireAuth(), h.CancelOrder)
		orders.POST("/request-return/:orderId", middleware.RequireAuth(), h.RequestReturn)
		orders.POST("/update-status/:orderId", middleware.RequireAdmin(), h.UpdateStatus)
		orders.POST("/process-refund/:orderId", middleware.RequireAdmin(), h.ProcessRefund)
	}
}

// CheckoutItemRequest is one requested order line
type CheckoutItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the request body for checkout
type CheckoutRequest struct {
	Items            []CheckoutItemRequest `json:"items"`
	PaymentMethod    string                `json:"paymentMethod"`
	PaymentReference string                `json:"paymentReference"`
	PaymentProofRef  string                `json:"paymentProofRef"`
	IdempotencyKey   string                `json:"idempotencyKey"`
}

// ReturnRequest is the request body for a return request
type ReturnRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest is the request body for an admin status update
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RefundRequest is the request body for an admin refund
type RefundRequest struct {
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	RefundReason  string          `json:"refundReason"`
	PartialRefund bool            `json:"partialRefund"`
}

// OrderItemResponse is one priced line in an order response
type OrderItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	OrderID           string              `json:"orderId"`
	UserID            string              `json:"userId"`
	Items             []OrderItemResponse `json:"items"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	Tax               decimal.Decimal     `json:"tax"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	PaymentMethod     string              `json:"paymentMethod"`
	PaymentReference  string              `json:"paymentReference,omitempty"`
	PaymentProofRef   string              `json:"paymentProofRef,omitempty"`
	OrderStatus       string              `json:"orderStatus"`
	RefundAmount      *decimal.Decimal    `json:"refundAmount,omitempty"`
	RefundReason      string              `json:"refundReason,omitempty"`
	RefundProcessedAt *time.Time          `json:"refundProcessedAt,omitempty"`
	ReturnRequestedAt *time.Time          `json:"returnRequestedAt,omitempty"`
	ReturnReason      string              `json:"returnReason,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Checkout handles POST /orders/checkout
func (h *HTTPHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	items := make([]application.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, application.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.useCase.Checkout(c.Request.Context(), application.CheckoutInput{
		UserID:           c.GetString(middleware.UserIDKey),
		SessionID:        c.GetString(middleware.SessionIDKey),
		Items:            items,
		PaymentMethod:    domain.PaymentMethod(req.PaymentMethod),
		PaymentReference: req.PaymentReference,
		PaymentProofRef:  req.PaymentProofRef,
		IdempotencyKey:   req.IdempotencyKey,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListOrders handles GET /orders
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     responses,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder handles GET /orders/:orderId
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.useCase.GetOrder(c.Request.Context(), c.Param("orderId"), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// CancelOrder handles POST /orders/cancel/:orderId
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	order, err := h.useCase.Transition(c.Request.Context(), application.TransitionInput{
		OrderID: c.Param("orderId"),
		Target:  domain.StatusCancelled,
		Actor:   actorFrom(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// RequestReturn handles POST /orders/request-return/:orderId
func (h *HTTPHandler) RequestReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.Transition(c.Request.Context(), application.TransitionInput{
		OrderID: c.Param("orderId"),
		Target:  domain.StatusReturnRequested,
		Reason:  req.Reason,
		Actor:   actorFrom(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateStatus handles POST /orders/update-status/:orderId
func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	order, err := h.useCase.Transition(c.Request.Context(), application.TransitionInput{
		OrderID: c.Param("orderId"),
		Target:  target,
		Actor:   actorFrom(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ProcessRefund handles POST /orders/process-refund/:orderId
func (h *HTTPHandler) ProcessRefund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.ProcessRefund(c.Request.Context(), application.RefundInput{
		OrderID: c.Param("orderId"),
		Full:    !req.PartialRefund,
		Amount:  req.RefundAmount,
		Reason:  req.RefundReason,
		Actor:   actorFrom(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func actorFrom(c *gin.Context) domain.Actor {
	role := domain.RoleCustomer
	if c.GetString(middleware.UserRoleKey) == middleware.RoleAdmin {
		role = domain.RoleAdmin
	}
	return domain.Actor{
		ID:   c.GetString(middleware.UserIDKey),
		Role: role,
	}
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	return OrderResponse{
		OrderID:           order.OrderID,
		UserID:            order.UserID,
		Items:             items,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		TotalAmount:       order.TotalAmount,
		PaymentMethod:     string(order.PaymentMethod),
		PaymentReference:  order.PaymentReference,
		PaymentProofRef:   order.PaymentProofRef,
		OrderStatus:       string(order.Status),
		RefundAmount:      order.RefundAmount,
		RefundReason:      order.RefundReason,
		RefundProcessedAt: order.RefundProcessedAt,
		ReturnRequestedAt: order.ReturnRequestedAt,
		ReturnReason:      order.ReturnReason,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}
