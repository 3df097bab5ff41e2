// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
	Status string `form:"status"` // active, inactive, all
	Role   string `form:"role"`   // admin, user, all
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats represents user with order statistics
type UserWithStats struct {
	User
	OrderCount  int64      `json:"order_count"`
	TotalSpent  int64      `json:"total_spent"` // VND
	LastOrderAt *time.Time `json:"last_order_at"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive *bool  `json:"is_active" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm, "%"+req.Search+"%",
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "user":
		query = query.Where("is_admin = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit

	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	usersWithStats := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		stats := s.getUserStats(u.ID)
		stats.User = u
		stats.User.Password = ""
		usersWithStats = append(usersWithStats, *stats)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with stats
func (s *AdminService) GetUser(userID uint) (*UserWithStats, error) {
	var u User
	if err := s.db.Preload("Addresses").First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	stats := s.getUserStats(userID)
	stats.User = u
	stats.User.Password = ""

	return stats, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	// An admin cannot lock themselves out
	if userID == adminID && !*req.IsActive {
		return fmt.Errorf("cannot deactivate your own account")
	}

	if err := s.db.Model(&u).Update("is_active", *req.IsActive).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// getUserStats gets order statistics for a user; zero values on failure
func (s *AdminService) getUserStats(userID uint) *UserWithStats {
	stats := &UserWithStats{}

	type orderStats struct {
		OrderCount  int64
		TotalSpent  int64
		LastOrderAt *time.Time
	}

	var os orderStats
	err := s.db.Raw(`
		SELECT
			COUNT(*) as order_count,
			COALESCE(SUM(total_amount), 0) as total_spent,
			MAX(created_at) as last_order_at
		FROM orders
		WHERE user_id = ? AND status != 'cancelled' AND deleted_at IS NULL
	`, userID).Scan(&os).Error
	if err == nil {
		stats.OrderCount = os.OrderCount
		stats.TotalSpent = os.TotalSpent
		stats.LastOrderAt = os.LastOrderAt
	}

	return stats
}
