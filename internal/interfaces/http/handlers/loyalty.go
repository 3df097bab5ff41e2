// internal/interfaces/http/handlers/loyalty.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// LoyaltyHandler handles loyalty point endpoints
type LoyaltyHandler struct {
	loyaltyService *loyalty.Service
	config         *config.Config
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(db *gorm.DB, cfg *config.Config) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyalty.NewService(db, cfg),
		config:         cfg,
	}
}

// GetAccount handles GET /loyalty
func (h *LoyaltyHandler) GetAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	account, err := h.loyaltyService.GetAccount(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve loyalty account")
		return
	}

	respondOK(c, http.StatusOK, account)
}

// History handles GET /loyalty/history
func (h *LoyaltyHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, err := h.loyaltyService.History(userID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve loyalty history")
		return
	}

	respondOK(c, http.StatusOK, history)
}
