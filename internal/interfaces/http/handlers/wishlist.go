// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/wishlist"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	config          *config.Config
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlist.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// Get handles GET /wishlist
func (h *WishlistHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.wishlistService.GetWishlist(userID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}

	respondOK(c, http.StatusOK, result)
}

// Add handles POST /wishlist
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req wishlist.AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	item, err := h.wishlistService.AddToWishlist(userID, &req)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, msg)
		case strings.Contains(msg, "already in wishlist"):
			respondError(c, http.StatusConflict, msg)
		default:
			respondError(c, http.StatusBadRequest, msg)
		}
		return
	}

	respondOK(c, http.StatusCreated, item)
}

// Remove handles DELETE /wishlist/:product_id
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}
	size := c.Query("size")

	if err := h.wishlistService.RemoveFromWishlist(userID, uint(productID), size); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Wishlist item not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to remove wishlist item")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"removed": true})
}

// Clear handles DELETE /wishlist
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.wishlistService.ClearWishlist(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear wishlist")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"cleared": true})
}

// MoveToCart handles POST /wishlist/:product_id/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	if err := h.wishlistService.MoveToCart(userID, uint(productID), req.Size, req.Quantity); err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, msg)
		case strings.Contains(msg, "stock") || strings.Contains(msg, "not available"):
			respondError(c, http.StatusUnprocessableEntity, msg)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to move item to cart")
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"moved": true})
}
