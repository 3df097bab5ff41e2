// internal/domain/order/service.go
package order

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/domain/product"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
)

// Free shipping kicks in above this order subtotal (VND).
const (
	flatShippingFee     = 30000
	freeShippingMinimum = 500000
)

// Service handles order business logic
type Service struct {
	db             *gorm.DB
	config         *config.Config
	voucherService *voucher.Service
	loyaltyService *loyalty.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, voucherService *voucher.Service, loyaltyService *loyalty.Service) *Service {
	return &Service{
		db:             db,
		config:         cfg,
		voucherService: voucherService,
		loyaltyService: loyaltyService,
	}
}

// OrderLineRequest represents one requested line in an order
type OrderLineRequest struct {
	ProductID     uint                   `json:"product_id" binding:"required"`
	Quantity      int                    `json:"quantity" binding:"required,min=1"`
	Size          string                 `json:"size"`
	Customization map[string]interface{} `json:"customization"`
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	Items         []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	ShippingInfo  ShippingInfo       `json:"shipping_info" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	VoucherCode   string             `json:"voucher_code,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

// UpdateStatusRequest represents a status update
type UpdateStatusRequest struct {
	Status        OrderStatus    `json:"status"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

// ListRequest represents admin order list query parameters
type ListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
	Search string      `form:"search"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// UserSummary is the minimal user projection attached to an order detail
type UserSummary struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OrderDetail represents a single order with its user projection
type OrderDetail struct {
	Order
	User UserSummary `json:"user"`
}

// CreateOrder places an order. Stock checks, the order insert with its
// denormalized items, the stock decrement and the sold increment all run in
// one transaction; any failure rolls back every write.
func (s *Service) CreateOrder(userID uint, req *CreateOrderRequest) (*Order, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var subtotal int64
	orderItems := make([]OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		var prod product.Product
		err := tx.Preload("Images").First(&prod, line.ProductID).Error
		if err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("product %d not found", line.ProductID)
			}
			return nil, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
		}

		if !prod.IsAvailable {
			tx.Rollback()
			return nil, fmt.Errorf("product '%s' is no longer available", prod.Name)
		}

		if prod.Stock < line.Quantity {
			tx.Rollback()
			return nil, fmt.Errorf("insufficient stock for product '%s'. Available: %d, Requested: %d",
				prod.Name, prod.Stock, line.Quantity)
		}

		unitPrice := prod.Price
		if line.Size != "" {
			var size product.ProductSize
			err := tx.Where("product_id = ? AND name = ? AND is_active = ?",
				line.ProductID, line.Size, true).First(&size).Error
			if err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("size '%s' not available for product '%s'", line.Size, prod.Name)
			}
			unitPrice = prod.PriceForSize(&size)
		}

		// Guarded decrement: the stock condition is re-checked by the UPDATE
		// itself, so a concurrent order cannot drive stock negative.
		result := tx.Model(&product.Product{}).
			Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
			UpdateColumns(map[string]interface{}{
				"stock": gorm.Expr("stock - ?", line.Quantity),
				"sold":  gorm.Expr("sold + ?", line.Quantity),
			})
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update stock for product '%s': %w", prod.Name, result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, fmt.Errorf("insufficient stock for product '%s'. Available: %d, Requested: %d",
				prod.Name, prod.Stock, line.Quantity)
		}

		var customJSON datatypes.JSON
		if len(line.Customization) > 0 {
			raw, err := json.Marshal(line.Customization)
			if err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("invalid customization payload: %w", err)
			}
			customJSON = raw
		}

		lineTotal := unitPrice * int64(line.Quantity)
		subtotal += lineTotal

		orderItems = append(orderItems, OrderItem{
			ProductID:     prod.ID,
			ProductName:   prod.Name,
			ProductSlug:   prod.Slug,
			ProductImage:  prod.PrimaryImageURL(),
			Size:          line.Size,
			Customization: customJSON,
			Quantity:      line.Quantity,
			Price:         unitPrice,
			TotalPrice:    lineTotal,
		})
	}

	// The voucher is checked against the priced subtotal, so size deltas
	// count toward both the minimum-order gate and a percent discount.
	var discount int64
	if req.VoucherCode != "" {
		var err error
		discount, _, err = s.voucherService.Validate(req.VoucherCode, subtotal)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	shipping := int64(flatShippingFee)
	if subtotal >= freeShippingMinimum {
		shipping = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	newOrder := Order{
		UserID:         userID,
		Status:         OrderStatusPending,
		PaymentStatus:  PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		SubtotalAmount: subtotal,
		ShippingAmount: shipping,
		DiscountAmount: discount,
		TotalAmount:    subtotal + shipping - discount,
		VoucherCode:    req.VoucherCode,
		ShippingInfo:   req.ShippingInfo,
		Notes:          req.Notes,
	}

	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	newOrder.OrderNumber = OrderNumberFor(newOrder.ID, time.Now().UTC())
	if err := tx.Model(&newOrder).Update("order_number", newOrder.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set order number: %w", err)
	}

	for i := range orderItems {
		orderItems[i].OrderID = newOrder.ID
		if err := tx.Create(&orderItems[i]).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	// Redemption bookkeeping is best-effort; the order stands either way
	if req.VoucherCode != "" {
		if err := s.voucherService.Redeem(req.VoucherCode); err != nil {
			fmt.Printf("Warning: failed to record voucher redemption for %s: %v\n", req.VoucherCode, err)
		}
	}

	if err := s.db.Preload("Items").First(&newOrder, newOrder.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}

	return &newOrder, nil
}

// GetUserOrders retrieves a user's orders, newest first, paginated.
func (s *Service) GetUserOrders(userID uint, page, limit int) (*ListResponse, error) {
	return s.listOrders(s.db.Model(&Order{}).Where("user_id = ?", userID), page, limit)
}

// GetOrder retrieves a single order with items and a minimal user
// projection. Returns (nil, nil) when the order does not exist.
func (s *Service) GetOrder(id uint) (*OrderDetail, error) {
	var o Order
	result := s.db.Preload("Items").First(&o, id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	detail := OrderDetail{Order: o}
	if err := s.db.Table("users").
		Select("id", "email", "first_name", "last_name").
		Where("id = ?", o.UserID).
		Scan(&detail.User).Error; err != nil {
		return nil, fmt.Errorf("failed to load order user: %w", err)
	}

	return &detail, nil
}

// UpdateStatus applies a status and/or payment-status change. Timestamps are
// set on the matching transitions; cancelling an order restores stock and
// sold counters in the same transaction.
func (s *Service) UpdateStatus(orderID uint, req *UpdateStatusRequest) (*Order, error) {
	var o Order
	if err := s.db.First(&o, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{}

	if req.PaymentStatus != nil && *req.PaymentStatus != o.PaymentStatus {
		updates["payment_status"] = *req.PaymentStatus
		if *req.PaymentStatus == PaymentStatusPaid && o.PaidAt == nil {
			updates["paid_at"] = now
		}
	}

	if req.Status != "" && req.Status != o.Status {
		if !ValidStatusTransition(o.Status, req.Status) {
			return nil, fmt.Errorf("invalid status transition from %s to %s", o.Status, req.Status)
		}
		updates["status"] = req.Status
		switch req.Status {
		case OrderStatusDelivered:
			updates["delivered_at"] = now
		case OrderStatusCancelled:
			updates["cancelled_at"] = now
		}
	}

	if len(updates) == 0 {
		return &o, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if updates["status"] == OrderStatusCancelled {
			if err := s.restoreStock(tx, o.ID); err != nil {
				return err
			}
		}
		return tx.Model(&o).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if updates["status"] == OrderStatusDelivered && s.loyaltyService != nil {
		if _, err := s.loyaltyService.EarnFromOrder(o.UserID, o.TotalAmount, o.OrderNumber); err != nil {
			fmt.Printf("Warning: failed to award loyalty points for order %s: %v\n", o.OrderNumber, err)
		}
	}

	if err := s.db.Preload("Items").First(&o, o.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &o, nil
}

// ListAllOrders retrieves orders across all users with status and free-text
// filters for the back-office.
func (s *Service) ListAllOrders(req *ListRequest) (*ListResponse, error) {
	query := s.db.Model(&Order{})

	if req.Status != "" {
		query = query.Where("orders.status = ?", req.Status)
	}

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where("orders.order_number LIKE ? OR orders.shipping_phone LIKE ? OR LOWER(users.email) LIKE LOWER(?)",
				like, like, like)
	}

	return s.listOrders(query, req.Page, req.Limit)
}

// Private helper methods

func (s *Service) listOrders(query *gorm.DB, page, limit int) (*ListResponse, error) {
	var orders []Order
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	err := query.Preload("Items").
		Order("orders.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// restoreStock is the compensating write for cancellation: every decremented
// counter from order creation is reversed.
func (s *Service) restoreStock(tx *gorm.DB, orderID uint) error {
	var items []OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	for _, item := range items {
		result := tx.Model(&product.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumns(map[string]interface{}{
				"stock": gorm.Expr("stock + ?", item.Quantity),
				"sold":  gorm.Expr("sold - ?", item.Quantity),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, result.Error)
		}
	}
	return nil
}
