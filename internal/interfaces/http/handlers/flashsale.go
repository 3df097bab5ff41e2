// internal/interfaces/http/handlers/flashsale.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/flashsale"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// FlashSaleHandler handles flash sale endpoints
type FlashSaleHandler struct {
	flashSaleService *flashsale.Service
	config           *config.Config
}

// NewFlashSaleHandler creates a new flash sale handler
func NewFlashSaleHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *FlashSaleHandler {
	return &FlashSaleHandler{
		flashSaleService: flashsale.NewService(db, redisClient, cfg),
		config:           cfg,
	}
}

// ListActive handles GET /flash-sales
func (h *FlashSaleHandler) ListActive(c *gin.Context) {
	sales, err := h.flashSaleService.ActiveSales()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve flash sales")
		return
	}

	respondOK(c, http.StatusOK, sales)
}

// Reserve handles POST /flash-sales/:id/reserve
func (h *FlashSaleHandler) Reserve(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	saleID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid flash sale ID")
		return
	}

	var req flashsale.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	reservation, err := h.flashSaleService.Reserve(saleID, userID, &req)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, "Flash sale not found")
		case strings.Contains(msg, "not running") || strings.Contains(msg, "quota"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to reserve flash sale quantity")
		}
		return
	}

	respondOK(c, http.StatusCreated, reservation)
}

// Release handles DELETE /flash-sales/:id/reserve
func (h *FlashSaleHandler) Release(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	saleID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid flash sale ID")
		return
	}

	if err := h.flashSaleService.Release(saleID, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to release reservation")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"released": true})
}

// Confirm handles POST /flash-sales/:id/confirm
func (h *FlashSaleHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	saleID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid flash sale ID")
		return
	}

	reservation, err := h.flashSaleService.Confirm(saleID, userID)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "no active reservation"):
			respondError(c, http.StatusNotFound, msg)
		case strings.Contains(msg, "quota"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to confirm reservation")
		}
		return
	}

	respondOK(c, http.StatusOK, reservation)
}

// Create handles POST /admin/flash-sales
func (h *FlashSaleHandler) Create(c *gin.Context) {
	var req flashsale.CreateFlashSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	sale, err := h.flashSaleService.Create(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, sale)
}
