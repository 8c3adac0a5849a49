package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"storefront/internal/reports/domain"
	"storefront/internal/reports/ports"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// ReportUseCase aggregates persisted orders into sales summaries. It is
// strictly read-only over the order collection.
type ReportUseCase struct {
	orders ports.OrderQuery
	users  ports.UserDirectory
	log    *logger.Logger
}

// NewReportUseCase creates a new report use case
func NewReportUseCase(orders ports.OrderQuery, users ports.UserDirectory, log *logger.Logger) *ReportUseCase {
	return &ReportUseCase{
		orders: orders,
		users:  users,
		log:    log,
	}
}

// SalesReport filters orders by date window and status, groups them by
// calendar day, and computes the summary and status distribution.
func (uc *ReportUseCase) SalesReport(ctx context.Context, filter domain.Filter) (*domain.SalesReport, error) {
	filter = filter.Normalize()
	start, end := filter.Window()

	records, err := uc.orders.ListOrders(ctx, start, end, filter.Status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query orders for report")
	}

	daily := aggregateDaily(records)
	summary := summarize(daily)
	distribution := distributionOf(records)

	uc.log.WithContext(ctx).Info("sales report generated",
		zap.String("start_date", filter.StartDate),
		zap.String("end_date", filter.EndDate),
		zap.String("status", filter.Status),
		zap.Int("orders", summary.TotalOrders),
	)

	return &domain.SalesReport{
		Filters:            filter,
		DailySales:         daily,
		Summary:            summary,
		StatusDistribution: distribution,
	}, nil
}

// ExportOrders serializes the filtered order set into a spreadsheet, one row
// per order. This is a pure read/format operation over the same query the
// report uses.
func (uc *ReportUseCase) ExportOrders(ctx context.Context, filter domain.Filter) (*excelize.File, error) {
	filter = filter.Normalize()
	start, end := filter.Window()

	records, err := uc.orders.ListOrders(ctx, start, end, filter.Status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query orders for export")
	}

	userIDs := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if !seen[record.UserID] {
			seen[record.UserID] = true
			userIDs = append(userIDs, record.UserID)
		}
	}

	emails, err := uc.users.EmailsByIDs(ctx, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve customer emails")
	}

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	header := []interface{}{"Order ID", "Created At", "Customer ID", "Customer Email", "Status", "Total"}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, errors.NewInternal("failed to write export header", err)
	}

	for i, record := range records {
		email, ok := emails[record.UserID]
		if !ok {
			email = "Unknown"
		}
		total, _ := record.TotalAmount.Float64()
		row := []interface{}{
			record.OrderID,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			record.UserID,
			email,
			record.Status,
			total,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, errors.NewInternal("failed to write export row", err)
		}
	}

	uc.log.WithContext(ctx).Info("order export generated",
		zap.Int("orders", len(records)),
	)

	return file, nil
}

// aggregateDaily groups records by calendar day, ascending
func aggregateDaily(records []domain.OrderRecord) []domain.DailySales {
	byDay := make(map[string]*domain.DailySales)
	for _, record := range records {
		day := record.CreatedAt.Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &domain.DailySales{Date: day, TotalSales: decimal.Zero}
			byDay[day] = entry
		}
		entry.TotalSales = entry.TotalSales.Add(record.TotalAmount)
		entry.OrderCount++
	}

	daily := make([]domain.DailySales, 0, len(byDay))
	for _, entry := range byDay {
		daily = append(daily, *entry)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date < daily[j].Date
	})

	return daily
}

// summarize computes the whole-range totals. Average order value is zero,
// not a division error, when the range holds no orders.
func summarize(daily []domain.DailySales) domain.Summary {
	summary := domain.Summary{
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, day := range daily {
		summary.TotalSales = summary.TotalSales.Add(day.TotalSales)
		summary.TotalOrders += day.OrderCount
	}
	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = summary.TotalSales.
			Div(decimal.NewFromInt(int64(summary.TotalOrders))).
			Round(2)
	}
	return summary
}

// distributionOf counts orders per status, most frequent first. When the
// filter's status is "all" the input set is already status-unfiltered, so
// this doubles as the unfiltered-by-status breakdown.
func distributionOf(records []domain.OrderRecord) []domain.StatusCount {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.Status]++
	}

	distribution := make([]domain.StatusCount, 0, len(counts))
	for status, count := range counts {
		distribution = append(distribution, domain.StatusCount{Status: status, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Status < distribution[j].Status
	})

	return distribution
}
