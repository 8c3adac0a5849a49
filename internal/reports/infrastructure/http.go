package infrastructure

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/reports/application"
	"storefront/internal/reports/domain"
	"storefront/pkg/errors"
	"storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for admin sales reporting
type HTTPHandler struct {
	useCase *application.ReportUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.ReportUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the reporting routes; the caller mounts them
// under an admin-gated group
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/sales", h.SalesReport)
		reports.GET("/sales/export/orders", h.ExportOrders)
	}
}

func filterFrom(c *gin.Context) domain.Filter {
	return domain.Filter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Status:    c.DefaultQuery("status", domain.StatusAll),
	}
}

// SalesReport handles GET /admin/reports/sales
func (h *HTTPHandler) SalesReport(c *gin.Context) {
	report, err := h.useCase.SalesReport(c.Request.Context(), filterFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     report,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ExportOrders handles GET /admin/reports/sales/export/orders
func (h *HTTPHandler) ExportOrders(c *gin.Context) {
	file, err := h.useCase.ExportOrders(c.Request.Context(), filterFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		c.Error(errors.NewInternal("failed to write export", err))
		return
	}
}
