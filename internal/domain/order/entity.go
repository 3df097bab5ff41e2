// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order represents a placed order. Line items are denormalized at placement
// time so later product edits never change what the customer sees.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus   `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending'" json:"payment_status"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method"`

	// Financial information, VND
	SubtotalAmount int64  `gorm:"not null" json:"subtotal_amount"`
	ShippingAmount int64  `gorm:"default:0" json:"shipping_amount"`
	DiscountAmount int64  `gorm:"default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	VoucherCode    string `gorm:"size:50" json:"voucher_code"`

	// Shipping information
	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	Notes        string       `gorm:"type:text" json:"notes"`

	// Timestamps
	PaidAt      *time.Time     `json:"paid_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents a denormalized line in an order
type OrderItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderID       uint           `gorm:"not null;index" json:"order_id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	ProductName   string         `gorm:"not null;size:255" json:"product_name"`
	ProductSlug   string         `gorm:"size:255" json:"product_slug"`
	ProductImage  string         `gorm:"size:500" json:"product_image"`
	Size          string         `gorm:"size:100" json:"size"`
	Customization datatypes.JSON `json:"customization,omitempty"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	Price         int64          `gorm:"not null" json:"price"`       // Unit price at order time, VND
	TotalPrice    int64          `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// ShippingInfo represents the delivery details embedded in an order
type ShippingInfo struct {
	RecipientName string `gorm:"size:255" json:"recipient_name"`
	Phone         string `gorm:"size:20" json:"phone"`
	AddressLine   string `gorm:"size:255" json:"address_line"`
	Ward          string `gorm:"size:100" json:"ward"`
	District      string `gorm:"size:100" json:"district"`
	City          string `gorm:"size:100" json:"city"`
	DeliveryNote  string `gorm:"size:500" json:"delivery_note"`
}

// Business methods for Order

// CanBeCancelled reports whether the order may still be cancelled.
// Orders are cancellable at any point before delivery.
func (o *Order) CanBeCancelled() bool {
	return o.Status != OrderStatusDelivered && o.Status != OrderStatusCancelled
}

// IsFinal reports whether the order has reached a terminal state.
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// OrderNumberFor builds the human-readable order number for a row ID.
// Deriving it from the ID keeps numbers monotonic and collision-free.
func OrderNumberFor(id uint, t time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", t.Format("20060102"), id)
}

// ValidStatusTransition reports whether moving from one status to another is
// allowed.
func ValidStatusTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return from != OrderStatusDelivered && from != OrderStatusCancelled
	}

	next := map[OrderStatus]OrderStatus{
		OrderStatusPending:    OrderStatusConfirmed,
		OrderStatusConfirmed:  OrderStatusProcessing,
		OrderStatusProcessing: OrderStatusShipping,
		OrderStatusShipping:   OrderStatusDelivered,
	}
	return next[from] == to
}
