package wishlist

import (
	"time"

	"gorm.io/gorm"
)

// WishlistItem represents a saved product, optionally pinned to a size.
// PriceWhenAdded is snapshotted so price drops can be surfaced later.
type WishlistItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ProductID      uint           `gorm:"not null;index" json:"product_id"`
	Size           string         `gorm:"size:50" json:"size"`
	PriceWhenAdded int64          `json:"price_when_added"` // VND
	AddedAt        time.Time      `json:"added_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
