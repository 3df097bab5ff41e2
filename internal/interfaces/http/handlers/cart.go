// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/cart"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userCart, err := h.cartService.GetOrCreateCart(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	respondOK(c, http.StatusOK, userCart)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	userCart, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondOK(c, http.StatusOK, userCart)
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	itemID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	userCart, err := h.cartService.UpdateItemQuantity(userID, itemID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondOK(c, http.StatusOK, userCart)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	itemID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	userCart, err := h.cartService.RemoveItem(userID, itemID)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondOK(c, http.StatusOK, userCart)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"cleared": true})
}

// GetGuestCart handles GET /cart/guest
func (h *CartHandler) GetGuestCart(c *gin.Context) {
	sessionID := h.getOrCreateSessionID(c)

	guestCart, err := h.cartService.GetGuestCart(sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve guest cart")
		return
	}

	respondOK(c, http.StatusOK, guestCart)
}

// AddGuestItem handles POST /cart/guest/items
func (h *CartHandler) AddGuestItem(c *gin.Context) {
	sessionID := h.getOrCreateSessionID(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	guestCart, err := h.cartService.AddGuestItem(sessionID, &req)
	if err != nil {
		respondCartError(c, err)
		return
	}

	respondOK(c, http.StatusOK, guestCart)
}

// ClearGuestCart handles DELETE /cart/guest
func (h *CartHandler) ClearGuestCart(c *gin.Context) {
	sessionID := h.getOrCreateSessionID(c)

	if err := h.cartService.ClearGuestCart(sessionID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear guest cart")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"cleared": true})
}

// MergeGuestCart handles POST /cart/merge. It folds a guest session cart into
// the authenticated user's cart, preserving guest price snapshots.
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		respondError(c, http.StatusBadRequest, "No guest cart session found")
		return
	}

	if err := h.cartService.MergeGuestCartToUser(userID, sessionID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to merge guest cart")
		return
	}

	userCart, err := h.cartService.GetOrCreateCart(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	respondOK(c, http.StatusOK, userCart)
}

// getOrCreateSessionID returns the guest session cookie, minting one if absent
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}
	return sessionID
}

// respondCartError maps cart service errors to HTTP statuses
func respondCartError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		respondError(c, http.StatusNotFound, msg)
	case strings.Contains(msg, "stock") || strings.Contains(msg, "not available") || strings.Contains(msg, "size"):
		respondError(c, http.StatusUnprocessableEntity, msg)
	default:
		respondError(c, http.StatusBadRequest, msg)
	}
}
