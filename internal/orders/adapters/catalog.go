package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	apperrors "storefront/pkg/errors"
)

// ProductModel is the GORM model for the product catalog. Catalog CRUD is
// owned elsewhere; the order context only reads prices and adjusts stock.
type ProductModel struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID string          `gorm:"size:64;uniqueIndex;not null"`
	Name      string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PostgresProductCatalog implements ProductCatalog using PostgreSQL
type PostgresProductCatalog struct {
	db *gorm.DB
}

// NewPostgresProductCatalog creates a new PostgreSQL product catalog
func NewPostgresProductCatalog(db *gorm.DB) *PostgresProductCatalog {
	return &PostgresProductCatalog{db: db}
}

// Migrate runs auto-migration for the product model
func (c *PostgresProductCatalog) Migrate() error {
	return c.db.AutoMigrate(&ProductModel{})
}

// GetByIDs resolves products by id; absent ids are missing from the result
func (c *PostgresProductCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]ports.Product, error) {
	var models []ProductModel

	result := c.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to resolve products", result.Error)
	}

	products := make(map[string]ports.Product, len(models))
	for _, model := range models {
		products[model.ProductID] = ports.Product{
			ID:    model.ProductID,
			Name:  model.Name,
			Price: model.Price,
			Stock: model.Stock,
		}
	}

	return products, nil
}

// ReserveStock atomically decrements stock for every line inside one
// transaction. A line whose decrement would push stock below zero affects no
// rows, which fails and rolls back the whole reservation.
func (c *PostgresProductCatalog) ReserveStock(ctx context.Context, lines []ports.StockLine) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&ProductModel{}).
				Where("product_id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return apperrors.NewInternal("failed to reserve stock", result.Error)
			}
			if result.RowsAffected == 0 {
				return domain.NewInsufficientStock(line.ProductID)
			}
		}
		return nil
	})
}

// ReleaseStock returns previously reserved stock
func (c *PostgresProductCatalog) ReleaseStock(ctx context.Context, lines []ports.StockLine) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&ProductModel{}).
				Where("product_id = ?", line.ProductID).
				Update("stock", gorm.Expr("stock + ?", line.Quantity))
			if result.Error != nil {
				return apperrors.NewInternal("failed to release stock", result.Error)
			}
		}
		return nil
	})
}
