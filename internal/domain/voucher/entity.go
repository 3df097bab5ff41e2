// internal/domain/voucher/entity.go
package voucher

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType enumerates how a voucher discounts an order
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// Voucher represents a discount code
type Voucher struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Code          string         `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Description   string         `json:"description"`
	DiscountType  DiscountType   `json:"discount_type" gorm:"not null;size:20"`
	DiscountValue int64          `json:"discount_value" gorm:"not null"` // percent (1-100) or VND amount
	MaxDiscount   int64          `json:"max_discount" gorm:"default:0"`  // cap for percent vouchers, 0 = uncapped
	MinOrderValue int64          `json:"min_order_value" gorm:"default:0"`
	StartsAt      time.Time      `json:"starts_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
	UsageLimit    int            `json:"usage_limit" gorm:"default:0"` // 0 = unlimited
	UsedCount     int            `json:"used_count" gorm:"default:0"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for Voucher model
func (Voucher) TableName() string {
	return "vouchers"
}

// IsValidAt checks activation, validity window and usage limit
func (v *Voucher) IsValidAt(t time.Time) bool {
	if !v.IsActive {
		return false
	}
	if t.Before(v.StartsAt) || t.After(v.ExpiresAt) {
		return false
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return false
	}
	return true
}

// DiscountFor computes the discount this voucher grants on an order amount.
// Percent discounts are capped by MaxDiscount when set; the result never
// exceeds the order amount.
func (v *Voucher) DiscountFor(orderAmount int64) int64 {
	var discount int64
	switch v.DiscountType {
	case DiscountTypePercent:
		discount = orderAmount * v.DiscountValue / 100
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	case DiscountTypeFixed:
		discount = v.DiscountValue
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
