// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/product"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID     uint                   `json:"product_id" binding:"required"`
	Quantity      int                    `json:"quantity" binding:"required,min=1"`
	Size          string                 `json:"size"`
	Customization map[string]interface{} `json:"customization"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetOrCreateCart returns the user's cart with items, products and images
// eager-loaded, newest item first. An empty cart is created on first access.
func (s *Service) GetOrCreateCart(userID uint) (*Cart, error) {
	var c Cart
	err := s.db.Where(Cart{UserID: userID}).FirstOrCreate(&c).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	return s.loadCart(c.ID)
}

// AddItem adds a product to the user's cart. An existing line with the same
// product, size and customization fingerprint has its quantity incremented;
// otherwise a new line is inserted snapshotting the product's current price.
// The match-or-insert and the totals recompute run in a single transaction.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*Cart, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_available = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or unavailable")
	}

	// Resolve size and the unit price snapshot
	unitPrice := prod.Price
	if req.Size != "" {
		var size product.ProductSize
		err := s.db.Where("product_id = ? AND name = ? AND is_active = ?",
			req.ProductID, req.Size, true).First(&size).Error
		if err != nil {
			return nil, fmt.Errorf("size '%s' not available for product '%s'", req.Size, prod.Name)
		}
		unitPrice = prod.PriceForSize(&size)
	}

	var customJSON datatypes.JSON
	if len(req.Customization) > 0 {
		raw, err := json.Marshal(req.Customization)
		if err != nil {
			return nil, fmt.Errorf("invalid customization payload: %w", err)
		}
		customJSON = raw
	}
	fingerprint := CustomizationFingerprint(req.Customization)

	var cartID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c Cart
		if err := tx.Where(Cart{UserID: userID}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("failed to get or create cart: %w", err)
		}
		cartID = c.ID

		if err := s.mergeLine(tx, c.ID, req.ProductID, req.Quantity, unitPrice, req.Size, customJSON, fingerprint); err != nil {
			return err
		}

		return s.recalculateTotals(tx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.loadCart(cartID)
}

// UpdateItemQuantity sets the quantity of a cart item. A quantity of zero or
// below removes the item.
func (s *Service) UpdateItemQuantity(userID, itemID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(userID, itemID)
	}

	item, err := s.findUserItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("cart item not found")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&CartItem{}).Where("id = ?", item.ID).
			Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return s.recalculateTotals(tx, item.CartID)
	})
	if err != nil {
		return nil, err
	}

	return s.loadCart(item.CartID)
}

// RemoveItem deletes a cart item and recomputes totals. Returns (nil, nil)
// when the item is already gone.
func (s *Service) RemoveItem(userID, itemID uint) (*Cart, error) {
	item, err := s.findUserItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&CartItem{}, item.ID).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.recalculateTotals(tx, item.CartID)
	})
	if err != nil {
		return nil, err
	}

	return s.loadCart(item.CartID)
}

// ClearCart deletes all items and zeroes the cached totals. No-op when the
// user has no cart yet.
func (s *Service) ClearCart(userID uint) error {
	var c Cart
	result := s.db.Where("user_id = ?", userID).First(&c)
	if result.Error == gorm.ErrRecordNotFound {
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to retrieve cart: %w", result.Error)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return s.recalculateTotals(tx, c.ID)
	})
}

// Private helper methods

// mergeLine increments an existing matching line or inserts a new one. The
// price snapshot of an existing line is kept; only the quantity changes.
func (s *Service) mergeLine(tx *gorm.DB, cartID, productID uint, quantity int, unitPrice int64, size string, customJSON datatypes.JSON, fingerprint string) error {
	var existing CartItem
	result := tx.Where("cart_id = ? AND product_id = ? AND size = ? AND customization_key = ?",
		cartID, productID, size, fingerprint).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		newItem := CartItem{
			CartID:           cartID,
			ProductID:        productID,
			Quantity:         quantity,
			Price:            unitPrice,
			Size:             size,
			Customization:    customJSON,
			CustomizationKey: fingerprint,
		}
		if err := tx.Create(&newItem).Error; err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to look up cart item: %w", result.Error)
	}

	existing.Quantity += quantity
	if err := tx.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// recalculateTotals re-reads all items for the cart and writes both cached
// aggregates back. Totals are always derived from the rows, never patched.
func (s *Service) recalculateTotals(tx *gorm.DB, cartID uint) error {
	var items []CartItem
	if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to read cart items: %w", err)
	}

	totalItems := 0
	var totalPrice int64
	for _, item := range items {
		totalItems += item.Quantity
		totalPrice += item.Price * int64(item.Quantity)
	}

	return tx.Model(&Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"total_items": totalItems,
		"total_price": totalPrice,
	}).Error
}

func (s *Service) loadCart(cartID uint) (*Cart, error) {
	var c Cart
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Items.Product").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&c, cartID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &c, nil
}

// findUserItem resolves a cart item by ID, scoped to the user's cart.
// Returns (nil, nil) when the item does not exist.
func (s *Service) findUserItem(userID, itemID uint) (*CartItem, error) {
	var item CartItem
	err := s.db.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}
	return &item, nil
}

// Guest carts (Redis-backed sessions)

// GetGuestCart retrieves a guest cart, returning an empty one if absent.
func (s *Service) GetGuestCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	ctx := context.Background()
	cartKey := fmt.Sprintf("cart:session:%s", sessionID)

	cartData, err := s.redisClient.Get(ctx, cartKey).Result()
	if err == redis.Nil {
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}

	return &sessionCart, nil
}

// AddGuestItem adds a product to a guest session cart.
func (s *Service) AddGuestItem(sessionID string, req *AddItemRequest) (*SessionCart, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_available = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or unavailable")
	}

	unitPrice := prod.Price
	if req.Size != "" {
		var size product.ProductSize
		err := s.db.Where("product_id = ? AND name = ? AND is_active = ?",
			req.ProductID, req.Size, true).First(&size).Error
		if err != nil {
			return nil, fmt.Errorf("size '%s' not available for product '%s'", req.Size, prod.Name)
		}
		unitPrice = prod.PriceForSize(&size)
	}

	sessionCart, err := s.GetGuestCart(sessionID)
	if err != nil {
		return nil, err
	}

	fingerprint := CustomizationFingerprint(req.Customization)
	merged := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == req.ProductID &&
			sessionCart.Items[i].Size == req.Size &&
			CustomizationFingerprint(sessionCart.Items[i].Customization) == fingerprint {
			sessionCart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}

	if !merged {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
			Price:         unitPrice,
			Size:          req.Size,
			Customization: req.Customization,
			AddedAt:       time.Now().UTC(),
		})
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	if err := s.saveGuestCart(sessionID, sessionCart); err != nil {
		return nil, err
	}
	return sessionCart, nil
}

// MergeGuestCartToUser merges a guest cart into the user's cart at login and
// clears the guest session. Guest price snapshots are preserved.
func (s *Service) MergeGuestCartToUser(userID uint, sessionID string) error {
	guestCart, err := s.GetGuestCart(sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil // No guest cart to merge
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var c Cart
		if err := tx.Where(Cart{UserID: userID}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("failed to get or create cart: %w", err)
		}

		for _, guestItem := range guestCart.Items {
			var customJSON datatypes.JSON
			if len(guestItem.Customization) > 0 {
				raw, err := json.Marshal(guestItem.Customization)
				if err != nil {
					continue
				}
				customJSON = raw
			}
			fingerprint := CustomizationFingerprint(guestItem.Customization)

			if err := s.mergeLine(tx, c.ID, guestItem.ProductID, guestItem.Quantity,
				guestItem.Price, guestItem.Size, customJSON, fingerprint); err != nil {
				return err
			}
		}

		return s.recalculateTotals(tx, c.ID)
	})
	if err != nil {
		return err
	}

	return s.ClearGuestCart(sessionID)
}

// ClearGuestCart removes a guest cart session from Redis.
func (s *Service) ClearGuestCart(sessionID string) error {
	ctx := context.Background()
	return s.redisClient.Del(ctx, fmt.Sprintf("cart:session:%s", sessionID)).Err()
}

func (s *Service) saveGuestCart(sessionID string, cart *SessionCart) error {
	ctx := context.Background()
	cartKey := fmt.Sprintf("cart:session:%s", sessionID)

	cartData, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	// Guest carts expire after 24 hours
	return s.redisClient.Set(ctx, cartKey, cartData, 24*time.Hour).Err()
}
