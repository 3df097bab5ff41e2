// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/analytics"
)

// AnalyticsHandler handles admin analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(db *gorm.DB, cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analytics.NewService(db, cfg),
		config:           cfg,
	}
}

// Dashboard handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve dashboard stats")
		return
	}

	respondOK(c, http.StatusOK, stats)
}

// DailyRevenue handles GET /admin/analytics/revenue
func (h *AnalyticsHandler) DailyRevenue(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		respondError(c, http.StatusBadRequest, "Invalid days parameter")
		return
	}

	series, err := h.analyticsService.GetDailyRevenue(days)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve revenue data")
		return
	}

	respondOK(c, http.StatusOK, series)
}

// TopProducts handles GET /admin/analytics/top-products
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		respondError(c, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	products, err := h.analyticsService.GetTopProducts(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve top products")
		return
	}

	respondOK(c, http.StatusOK, products)
}

// LowStock handles GET /admin/analytics/low-stock
func (h *AnalyticsHandler) LowStock(c *gin.Context) {
	products, err := h.analyticsService.GetLowStockProducts()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve low stock products")
		return
	}

	respondOK(c, http.StatusOK, products)
}
