package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/cart/domain"
	"storefront/internal/cart/ports"
	apperrors "storefront/pkg/errors"
)

// productModel maps the shared products table. The cart context only reads
// it to snapshot a name and price when a line is added.
type productModel struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID string          `gorm:"size:64;uniqueIndex;not null"`
	Name      string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (productModel) TableName() string {
	return "products"
}

// PostgresCatalogReader implements CatalogReader using PostgreSQL
type PostgresCatalogReader struct {
	db *gorm.DB
}

// NewPostgresCatalogReader creates a new catalog reader
func NewPostgresCatalogReader(db *gorm.DB) *PostgresCatalogReader {
	return &PostgresCatalogReader{db: db}
}

// GetProduct resolves a single product by id
func (r *PostgresCatalogReader) GetProduct(ctx context.Context, productID string) (*ports.Product, error) {
	var model productModel

	result := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(productID)
		}
		return nil, apperrors.NewInternal("failed to resolve product", result.Error)
	}

	return &ports.Product{
		ID:    model.ProductID,
		Name:  model.Name,
		Price: model.Price,
	}, nil
}
