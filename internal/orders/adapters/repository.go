package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/orders/domain"
	apperrors "storefront/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID                uint             `gorm:"primaryKey"`
	OrderID           string           `gorm:"size:36;uniqueIndex;not null"`
	UserID            string           `gorm:"size:64;index;not null"`
	Items             []byte           `gorm:"type:jsonb;not null"`
	Subtotal          decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Tax               decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	TotalAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	PaymentMethod     string           `gorm:"size:32;not null"`
	PaymentReference  string           `gorm:"size:128"`
	PaymentProofRef   string           `gorm:"size:256"`
	OrderStatus       domain.Status    `gorm:"size:20;not null;default:'pending';index"`
	RefundAmount      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	RefundReason      string           `gorm:"size:512"`
	RefundProcessedAt *time.Time
	ReturnRequestedAt *time.Time
	ReturnReason      string    `gorm:"size:512"`
	IdempotencyKey    *string   `gorm:"size:128;uniqueIndex"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// orderItemDoc is the JSON layout of one order line inside the items column.
// It is also the wire format the reporting export reads.
type orderItemDoc struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order model
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{})
}

// Create persists a new order
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return apperrors.NewInternal("failed to encode order items", err)
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateOrder
		}
		return apperrors.NewInternal("failed to create order", result.Error)
	}

	return nil
}

// GetByID retrieves an order by its opaque order id
func (r *PostgresOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(orderID)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model)
}

// GetByIdempotencyKey retrieves the order created under an idempotency key
func (r *PostgresOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("order", key)
		}
		return nil, apperrors.NewInternal("failed to get order by idempotency key", result.Error)
	}

	return toDomain(&model)
}

// ListByUserID retrieves a customer's orders, newest first
func (r *PostgresOrderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		order, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// ApplyTransition applies a status change as a single conditional update:
// "set status to X where order_id = Y and order_status = expected prior".
// Zero rows affected means the precondition no longer holds.
func (r *PostgresOrderRepository) ApplyTransition(ctx context.Context, orderID string, change *domain.StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"order_status": change.To,
		"updated_at":   change.UpdatedAt,
	}
	if change.ReturnRequestedAt != nil {
		updates["return_requested_at"] = change.ReturnRequestedAt
		updates["return_reason"] = change.ReturnReason
	}
	if change.RefundProcessedAt != nil {
		updates["refund_processed_at"] = change.RefundProcessedAt
		updates["refund_reason"] = change.RefundReason
		if change.RefundAmount != nil {
			updates["refund_amount"] = change.RefundAmount
		}
	}

	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("order_id = ? AND order_status = ?", orderID, change.From).
		Updates(updates)
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to apply status transition", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) (*OrderModel, error) {
	docs := make([]orderItemDoc, 0, len(order.Items))
	for _, item := range order.Items {
		docs = append(docs, orderItemDoc{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	items, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}

	var idempotencyKey *string
	if order.IdempotencyKey != "" {
		idempotencyKey = &order.IdempotencyKey
	}

	return &OrderModel{
		OrderID:           order.OrderID,
		UserID:            order.UserID,
		Items:             items,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		TotalAmount:       order.TotalAmount,
		PaymentMethod:     string(order.PaymentMethod),
		PaymentReference:  order.PaymentReference,
		PaymentProofRef:   order.PaymentProofRef,
		OrderStatus:       order.Status,
		RefundAmount:      order.RefundAmount,
		RefundReason:      order.RefundReason,
		RefundProcessedAt: order.RefundProcessedAt,
		ReturnRequestedAt: order.ReturnRequestedAt,
		ReturnReason:      order.ReturnReason,
		IdempotencyKey:    idempotencyKey,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}, nil
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *OrderModel) (*domain.Order, error) {
	var docs []orderItemDoc
	if err := json.Unmarshal(model.Items, &docs); err != nil {
		return nil, apperrors.NewInternal("failed to decode order items", err)
	}

	items := make([]domain.OrderItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.OrderItem{
			ProductID: doc.ProductID,
			Name:      doc.Name,
			Price:     doc.Price,
			Quantity:  doc.Quantity,
			Subtotal:  doc.Subtotal,
		})
	}

	var idempotencyKey string
	if model.IdempotencyKey != nil {
		idempotencyKey = *model.IdempotencyKey
	}

	return &domain.Order{
		OrderID:           model.OrderID,
		UserID:            model.UserID,
		Items:             items,
		Subtotal:          model.Subtotal,
		Tax:               model.Tax,
		TotalAmount:       model.TotalAmount,
		PaymentMethod:     domain.PaymentMethod(model.PaymentMethod),
		PaymentReference:  model.PaymentReference,
		PaymentProofRef:   model.PaymentProofRef,
		Status:            model.OrderStatus,
		RefundAmount:      model.RefundAmount,
		RefundReason:      model.RefundReason,
		RefundProcessedAt: model.RefundProcessedAt,
		ReturnRequestedAt: model.ReturnRequestedAt,
		ReturnReason:      model.ReturnReason,
		IdempotencyKey:    idempotencyKey,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}, nil
}
