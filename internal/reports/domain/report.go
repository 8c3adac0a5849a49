package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is the read model the reporting context consumes: one row per
// persisted order, no line items.
type OrderRecord struct {
	OrderID     string
	UserID      string
	Status      string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// Filter carries the raw report query parameters. Dates are "YYYY-MM-DD";
// unparseable values are ignored, an empty status means "all".
type Filter struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

// StatusAll matches every order status
const StatusAll = "all"

// Normalize fills defaults
func (f Filter) Normalize() Filter {
	if f.Status == "" {
		f.Status = StatusAll
	}
	return f
}

// Window resolves the filter's inclusive date range using local calendar day
// boundaries: [start 00:00:00, end 23:59:59.999]. Either side may be nil.
func (f Filter) Window() (start, end *time.Time) {
	if t, err := time.ParseInLocation("2006-01-02", f.StartDate, time.Local); err == nil {
		start = &t
	}
	if t, err := time.ParseInLocation("2006-01-02", f.EndDate, time.Local); err == nil {
		eod := t.Add(24*time.Hour - time.Millisecond)
		end = &eod
	}
	return start, end
}

// DailySales is one calendar day's aggregate
type DailySales struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"totalSales"`
	OrderCount int             `json:"orderCount"`
}

// Summary aggregates the whole filtered set
type Summary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int             `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// StatusCount is one slice of the status distribution
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SalesReport is the full report payload
type SalesReport struct {
	Filters            Filter        `json:"filters"`
	DailySales         []DailySales  `json:"dailySales"`
	Summary            Summary       `json:"summary"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}
