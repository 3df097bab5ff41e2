// internal/domain/flashsale/entity.go
package flashsale

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/domain/product"
)

// FlashSale represents a time-boxed discounted quota on one product
type FlashSale struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProductID uint           `json:"product_id" gorm:"not null;index"`
	SalePrice int64          `json:"sale_price" gorm:"not null"` // VND
	Quota     int            `json:"quota" gorm:"not null"`
	SoldCount int            `json:"sold_count" gorm:"default:0"`
	StartsAt  time.Time      `json:"starts_at"`
	EndsAt    time.Time      `json:"ends_at"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Product product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for FlashSale model
func (FlashSale) TableName() string {
	return "flash_sales"
}

// IsRunningAt checks whether the sale window is open
func (f *FlashSale) IsRunningAt(t time.Time) bool {
	return f.IsActive && !t.Before(f.StartsAt) && !t.After(f.EndsAt)
}

// IsSoldOut reports whether the confirmed sales have consumed the quota
func (f *FlashSale) IsSoldOut() bool {
	return f.SoldCount >= f.Quota
}

// Reservation represents a short-lived hold on flash-sale quota
type Reservation struct {
	SaleID    uint      `json:"sale_id"`
	UserID    uint      `json:"user_id"`
	Quantity  int       `json:"quantity"`
	SalePrice int64     `json:"sale_price"`
	ExpiresAt time.Time `json:"expires_at"`
}
