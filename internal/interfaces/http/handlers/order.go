// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/domain/order"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, cfg *config.Config) *OrderHandler {
	voucherService := voucher.NewService(db, cfg)
	loyaltyService := loyalty.NewService(db, cfg)
	return &OrderHandler{
		orderService: order.NewService(db, cfg, voucherService, loyaltyService),
		config:       cfg,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	newOrder, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "insufficient stock") || strings.Contains(msg, "not available"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		case strings.Contains(msg, "voucher"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, msg)
		default:
			respondError(c, http.StatusBadRequest, msg)
		}
		return
	}

	respondOK(c, http.StatusCreated, newOrder)
}

// ListMine handles GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	respondPage(c, http.StatusOK, result.Orders, result.Pagination)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	detail, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}
	if detail == nil {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}

	// Customers may only see their own orders
	if detail.UserID != userID && !middleware.IsAdminFromContext(c) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}

	respondOK(c, http.StatusOK, detail)
}

// ListAll handles GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.orderService.ListAllOrders(&req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	respondPage(c, http.StatusOK, result.Orders, result.Pagination)
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	updated, err := h.orderService.UpdateStatus(orderID, &req)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, "Order not found")
		case strings.Contains(msg, "transition"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	respondOK(c, http.StatusOK, updated)
}
