// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/domain/product"
)

// Cart represents a per-user shopping cart with cached totals.
// TotalItems and TotalPrice are denormalized and recomputed from the items
// inside the same transaction as every mutation; they are never patched
// incrementally.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalItems int        `gorm:"not null;default:0" json:"total_items"`
	TotalPrice int64      `gorm:"not null;default:0" json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem represents one line in a cart. Price is a snapshot taken at
// add-time and is decoupled from the product's live price. Two lines with the
// same product are the same line only when size and the canonical
// customization fingerprint match.
type CartItem struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CartID           uint           `gorm:"not null;index" json:"cart_id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	Quantity         int            `gorm:"not null;default:1" json:"quantity"`
	Price            int64          `gorm:"not null" json:"price"` // Unit price at time of adding, VND
	Size             string         `gorm:"size:100" json:"size"`
	Customization    datatypes.JSON `json:"customization,omitempty"`
	CustomizationKey string         `gorm:"size:64;index" json:"-"` // Canonical fingerprint for dedup
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// SessionCart represents a cart for guest users (stored in Redis)
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem represents a cart item for guest users
type SessionCartItem struct {
	ProductID     uint                   `json:"product_id"`
	Quantity      int                    `json:"quantity"`
	Price         int64                  `json:"price"`
	Size          string                 `json:"size,omitempty"`
	Customization map[string]interface{} `json:"customization,omitempty"`
	AddedAt       time.Time              `json:"added_at"`
}
