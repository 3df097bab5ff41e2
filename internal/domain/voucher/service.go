// internal/domain/voucher/service.go
package voucher

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
)

// Service handles voucher business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new voucher service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateVoucherRequest represents voucher creation data
type CreateVoucherRequest struct {
	Code          string       `json:"code" binding:"required,min=3,max=50"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percent fixed"`
	DiscountValue int64        `json:"discount_value" binding:"required,min=1"`
	MaxDiscount   int64        `json:"max_discount" binding:"min=0"`
	MinOrderValue int64        `json:"min_order_value" binding:"min=0"`
	StartsAt      time.Time    `json:"starts_at" binding:"required"`
	ExpiresAt     time.Time    `json:"expires_at" binding:"required"`
	UsageLimit    int          `json:"usage_limit" binding:"min=0"`
}

// ValidationResult represents the outcome of validating a code against an order
type ValidationResult struct {
	Code           string `json:"code"`
	Valid          bool   `json:"valid"`
	DiscountAmount int64  `json:"discount_amount"`
	Message        string `json:"message,omitempty"`
}

// Create creates a new voucher
func (s *Service) Create(req *CreateVoucherRequest) (*Voucher, error) {
	code := normalizeCode(req.Code)

	if req.DiscountType == DiscountTypePercent && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percent discount cannot exceed 100")
	}
	if !req.ExpiresAt.After(req.StartsAt) {
		return nil, fmt.Errorf("expiry must be after start date")
	}

	var existing Voucher
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("voucher with code '%s' already exists", code)
	}

	v := Voucher{
		Code:          code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinOrderValue: req.MinOrderValue,
		StartsAt:      req.StartsAt,
		ExpiresAt:     req.ExpiresAt,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
	}

	if err := s.db.Create(&v).Error; err != nil {
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}

	return &v, nil
}

// Validate checks a code against an order amount and returns the discount it
// would grant. The error carries the human-readable rejection reason.
func (s *Service) Validate(code string, orderAmount int64) (int64, *Voucher, error) {
	var v Voucher
	err := s.db.Where("code = ?", normalizeCode(code)).First(&v).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil, fmt.Errorf("voucher code '%s' not found", code)
		}
		return 0, nil, fmt.Errorf("failed to look up voucher: %w", err)
	}

	now := time.Now().UTC()
	if !v.IsActive {
		return 0, nil, fmt.Errorf("voucher '%s' is no longer active", v.Code)
	}
	if now.Before(v.StartsAt) {
		return 0, nil, fmt.Errorf("voucher '%s' is not yet valid", v.Code)
	}
	if now.After(v.ExpiresAt) {
		return 0, nil, fmt.Errorf("voucher '%s' has expired", v.Code)
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return 0, nil, fmt.Errorf("voucher '%s' has reached its usage limit", v.Code)
	}
	if orderAmount < v.MinOrderValue {
		return 0, nil, fmt.Errorf("order must be at least %d to use voucher '%s'", v.MinOrderValue, v.Code)
	}

	return v.DiscountFor(orderAmount), &v, nil
}

// CheckCode is the non-erroring variant backing the public validation
// endpoint: rejections come back as a result, not an error.
func (s *Service) CheckCode(code string, orderAmount int64) *ValidationResult {
	discount, v, err := s.Validate(code, orderAmount)
	if err != nil {
		return &ValidationResult{
			Code:    normalizeCode(code),
			Valid:   false,
			Message: err.Error(),
		}
	}
	return &ValidationResult{
		Code:           v.Code,
		Valid:          true,
		DiscountAmount: discount,
	}
}

// Redeem counts one use against the voucher. The usage-limit condition is
// part of the UPDATE so concurrent redemptions cannot overshoot the limit.
func (s *Service) Redeem(code string) error {
	result := s.db.Model(&Voucher{}).
		Where("code = ? AND is_active = ? AND (usage_limit = 0 OR used_count < usage_limit)",
			normalizeCode(code), true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem voucher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("voucher '%s' cannot be redeemed", code)
	}
	return nil
}

// ListAvailable returns vouchers usable right now, soonest-expiring first.
// A positive orderAmount also filters out vouchers whose minimum the order
// does not reach; zero lists every currently usable voucher.
func (s *Service) ListAvailable(orderAmount int64) ([]Voucher, error) {
	now := time.Now().UTC()
	query := s.db.
		Where("is_active = ? AND starts_at <= ? AND expires_at >= ?", true, now, now).
		Where("usage_limit = 0 OR used_count < usage_limit")
	if orderAmount > 0 {
		query = query.Where("min_order_value <= ?", orderAmount)
	}

	var vouchers []Voucher
	err := query.Order("expires_at ASC").Find(&vouchers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}
	return vouchers, nil
}

// List returns all vouchers for the back-office, newest first
func (s *Service) List() ([]Voucher, error) {
	var vouchers []Voucher
	if err := s.db.Order("created_at DESC").Find(&vouchers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}
	return vouchers, nil
}

// Deactivate turns a voucher off without deleting its redemption history
func (s *Service) Deactivate(id uint) error {
	result := s.db.Model(&Voucher{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate voucher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("voucher not found")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
