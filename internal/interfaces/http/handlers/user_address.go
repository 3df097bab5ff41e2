// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/user"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// UserAddressHandler handles delivery address endpoints
type UserAddressHandler struct {
	addressService *user.AddressService
	config         *config.Config
}

// NewUserAddressHandler creates a new address handler
func NewUserAddressHandler(db *gorm.DB, cfg *config.Config) *UserAddressHandler {
	return &UserAddressHandler{
		addressService: user.NewAddressService(db, cfg),
		config:         cfg,
	}
}

// List handles GET /users/me/addresses
func (h *UserAddressHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	addresses, err := h.addressService.GetUserAddresses(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve addresses")
		return
	}

	respondOK(c, http.StatusOK, addresses)
}

// Create handles POST /users/me/addresses
func (h *UserAddressHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	address, err := h.addressService.CreateAddress(userID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, address)
}

// Update handles PUT /users/me/addresses/:id
func (h *UserAddressHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	addressID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address ID")
		return
	}

	var req user.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	address, err := h.addressService.UpdateAddress(userID, addressID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Address not found")
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusOK, address)
}

// Delete handles DELETE /users/me/addresses/:id
func (h *UserAddressHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	addressID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address ID")
		return
	}

	if err := h.addressService.DeleteAddress(userID, addressID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Address not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete address")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

// SetDefault handles PUT /users/me/addresses/:id/default
func (h *UserAddressHandler) SetDefault(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	addressID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address ID")
		return
	}

	if err := h.addressService.SetDefaultAddress(userID, addressID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Address not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to set default address")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"default": true})
}
