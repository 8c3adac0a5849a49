package infrastructure

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/cart/application"
	"storefront/internal/cart/domain"
	ordersdomain "storefront/internal/orders/domain"
	"storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the session cart
type HTTPHandler struct {
	service *application.CartService
	taxRate decimal.Decimal
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(service *application.CartService, taxRate decimal.Decimal) *HTTPHandler {
	return &HTTPHandler{service: service, taxRate: taxRate}
}

// RegisterRoutes registers the cart routes. The cart works for anonymous
// sessions too, so none of these require authentication.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.GET("/add/:productId", h.Add)
		cart.POST("/increase/:productId", h.Increase)
		cart.POST("/decrease/:productId", h.Decrease)
		cart.POST("/remove/:productId", h.Remove)
	}
}

// CartItemResponse is one line in a cart response
type CartItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// CartResponse is the cart plus its computed totals
type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Total    decimal.Decimal    `json:"total"`
}

// GetCart handles GET /cart
func (h *HTTPHandler) GetCart(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	h.respond(c, cart)
}

// Add handles GET /cart/add/:productId
func (h *HTTPHandler) Add(c *gin.Context) {
	cart, err := h.service.Add(c.Request.Context(), c.GetString(middleware.SessionIDKey), c.Param("productId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.respond(c, cart)
}

// Increase handles POST /cart/increase/:productId
func (h *HTTPHandler) Increase(c *gin.Context) {
	cart, err := h.service.Increase(c.Request.Context(), c.GetString(middleware.SessionIDKey), c.Param("productId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.respond(c, cart)
}

// Decrease handles POST /cart/decrease/:productId
func (h *HTTPHandler) Decrease(c *gin.Context) {
	cart, err := h.service.Decrease(c.Request.Context(), c.GetString(middleware.SessionIDKey), c.Param("productId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.respond(c, cart)
}

// Remove handles POST /cart/remove/:productId
func (h *HTTPHandler) Remove(c *gin.Context) {
	cart, err := h.service.Remove(c.Request.Context(), c.GetString(middleware.SessionIDKey), c.Param("productId"))
	if err != nil {
		c.Error(err)
		return
	}

	h.respond(c, cart)
}

func (h *HTTPHandler) respond(c *gin.Context, cart domain.Cart) {
	c.JSON(http.StatusOK, gin.H{
		"data":     h.toResponse(cart),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// toResponse computes the cart totals with the same pricing rules checkout
// uses, so the rendered cart and the resulting order always agree.
func (h *HTTPHandler) toResponse(cart domain.Cart) CartResponse {
	response := CartResponse{
		Items:    make([]CartItemResponse, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	if cart.IsEmpty() {
		return response
	}

	lines := make([]ordersdomain.PricedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		response.Items = append(response.Items, CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Qty:       item.Qty,
		})
		lines = append(lines, ordersdomain.PricedLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Qty,
		})
	}

	if pricing, err := ordersdomain.PriceLines(lines, h.taxRate); err == nil {
		response.Subtotal = pricing.Subtotal
		response.Tax = pricing.Tax
		response.Total = pricing.Total
	}

	return response
}
