// internal/interfaces/http/handlers/user_admin.go
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

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
	config       *config.Config
}

// NewUserAdminHandler creates a new admin user handler
func NewUserAdminHandler(db *gorm.DB, cfg *config.Config) *UserAdminHandler {
	return &UserAdminHandler{
		adminService: user.NewAdminService(db, cfg),
		config:       cfg,
	}
}

// List handles GET /admin/users
func (h *UserAdminHandler) List(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.adminService.GetUsers(&req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	respondPage(c, http.StatusOK, result.Users, gin.H{
		"page":        result.Page,
		"limit":       result.Limit,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// Get handles GET /admin/users/:id
func (h *UserAdminHandler) Get(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.adminService.GetUser(userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	respondOK(c, http.StatusOK, result)
}

// UpdateStatus handles PUT /admin/users/:id/status
func (h *UserAdminHandler) UpdateStatus(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req user.UserStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	if err := h.adminService.UpdateUserStatus(userID, &req, adminID); err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "not found"):
			respondError(c, http.StatusNotFound, "User not found")
		case strings.Contains(msg, "own account"):
			respondError(c, http.StatusForbidden, msg)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update user status")
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"updated": true})
}
