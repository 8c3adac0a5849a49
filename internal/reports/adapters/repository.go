package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/reports/domain"
	apperrors "storefront/pkg/errors"
)

// orderRow maps the columns the reporting context reads from the shared
// orders table. Line items stay out of the read model.
type orderRow struct {
	OrderID     string
	UserID      string
	OrderStatus string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// PostgresOrderQuery implements OrderQuery using PostgreSQL
type PostgresOrderQuery struct {
	db *gorm.DB
}

// NewPostgresOrderQuery creates a new order query adapter
func NewPostgresOrderQuery(db *gorm.DB) *PostgresOrderQuery {
	return &PostgresOrderQuery{db: db}
}

// ListOrders returns the date/status-filtered order rows, oldest first
func (q *PostgresOrderQuery) ListOrders(ctx context.Context, start, end *time.Time, status string) ([]domain.OrderRecord, error) {
	query := q.db.WithContext(ctx).
		Table("orders").
		Select("order_id", "user_id", "order_status", "total_amount", "created_at")

	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	if status != "" && status != domain.StatusAll {
		query = query.Where("order_status = ?", status)
	}

	var rows []orderRow
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.NewInternal("failed to query orders", err)
	}

	records := make([]domain.OrderRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.OrderRecord{
			OrderID:     row.OrderID,
			UserID:      row.UserID,
			Status:      row.OrderStatus,
			TotalAmount: row.TotalAmount,
			CreatedAt:   row.CreatedAt,
		})
	}

	return records, nil
}

// userRow maps the identity layer's users table; reporting only reads emails
type userRow struct {
	UserID string
	Email  string
}

// PostgresUserDirectory implements UserDirectory using PostgreSQL
type PostgresUserDirectory struct {
	db *gorm.DB
}

// NewPostgresUserDirectory creates a new user directory adapter
func NewPostgresUserDirectory(db *gorm.DB) *PostgresUserDirectory {
	return &PostgresUserDirectory{db: db}
}

// EmailsByIDs resolves customer emails; missing users are simply absent
func (d *PostgresUserDirectory) EmailsByIDs(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	var rows []userRow
	err := d.db.WithContext(ctx).
		Table("users").
		Select("user_id", "email").
		Where("user_id IN ?", userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to resolve user emails", err)
	}

	emails := make(map[string]string, len(rows))
	for _, row := range rows {
		emails[row.UserID] = row.Email
	}

	return emails, nil
}
