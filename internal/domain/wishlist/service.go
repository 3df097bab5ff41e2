package wishlist

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/cart"
	"github.com/your-org/bakery-backend/internal/domain/product"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cart.NewService(db, redisClient, cfg),
	}
}

// WishlistItemResponse represents a wishlist item with product details
type WishlistItemResponse struct {
	ID             uint             `json:"id"`
	ProductID      uint             `json:"product_id"`
	Size           string           `json:"size,omitempty"`
	Product        *product.Product `json:"product,omitempty"`
	AddedAt        time.Time        `json:"added_at"`
	IsAvailable    bool             `json:"is_available"`
	CurrentPrice   int64            `json:"current_price"`
	PriceWhenAdded int64            `json:"price_when_added"`
	PriceDropped   bool             `json:"price_dropped"`
}

// WishlistResponse represents a wishlist with items and pagination
type WishlistResponse struct {
	Items      []WishlistItemResponse `json:"items"`
	Count      int                    `json:"count"`
	Pagination Pagination             `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
}

// GetWishlist retrieves wishlist for a user, newest first, paginated
func (s *Service) GetWishlist(userID uint, page, limit int) (*WishlistResponse, error) {
	var items []WishlistItem
	var total int64

	query := s.db.Model(&WishlistItem{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	if err := query.Order("added_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	responses := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		responses[i] = WishlistItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Size:           item.Size,
			AddedAt:        item.AddedAt,
			PriceWhenAdded: item.PriceWhenAdded,
		}
	}
	if err := s.loadProductDetails(responses); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &WishlistResponse{
		Items: responses,
		Count: len(responses),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int(total),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// AddToWishlist adds a product to the wishlist
func (s *Service) AddToWishlist(userID uint, req *AddToWishlistRequest) (*WishlistItemResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_available = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or unavailable")
	}

	price := prod.Price
	if req.Size != "" {
		var size product.ProductSize
		err := s.db.Where("product_id = ? AND name = ? AND is_active = ?",
			req.ProductID, req.Size, true).First(&size).Error
		if err != nil {
			return nil, fmt.Errorf("size '%s' not available for product '%s'", req.Size, prod.Name)
		}
		price = prod.PriceForSize(&size)
	}

	var existing WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ? AND size = ?",
		userID, req.ProductID, req.Size).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("item already exists in wishlist")
	}

	item := WishlistItem{
		UserID:         userID,
		ProductID:      req.ProductID,
		Size:           req.Size,
		PriceWhenAdded: price,
		AddedAt:        time.Now().UTC(),
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
	}

	responses := []WishlistItemResponse{{
		ID:             item.ID,
		ProductID:      item.ProductID,
		Size:           item.Size,
		AddedAt:        item.AddedAt,
		PriceWhenAdded: item.PriceWhenAdded,
	}}
	if err := s.loadProductDetails(responses); err != nil {
		return nil, err
	}

	return &responses[0], nil
}

// RemoveFromWishlist removes an item from the wishlist
func (s *Service) RemoveFromWishlist(userID, productID uint, size string) error {
	result := s.db.Where("user_id = ? AND product_id = ? AND size = ?",
		userID, productID, size).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in wishlist")
	}

	return nil
}

// ClearWishlist removes all items from the wishlist
func (s *Service) ClearWishlist(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&WishlistItem{}).Error
}

// GetWishlistCount returns the number of items in wishlist
func (s *Service) GetWishlistCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// IsInWishlist checks if a product is in the user's wishlist
func (s *Service) IsInWishlist(userID, productID uint, size string) (bool, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		Count(&count).Error
	return count > 0, err
}

// MoveToCart moves an item from wishlist to cart. The cart line gets the
// product's current price, not the wishlist snapshot.
func (s *Service) MoveToCart(userID, productID uint, size string, quantity int) error {
	inWishlist, err := s.IsInWishlist(userID, productID, size)
	if err != nil {
		return err
	}
	if !inWishlist {
		return fmt.Errorf("item not found in wishlist")
	}

	_, err = s.cartService.AddItem(userID, &cart.AddItemRequest{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
	})
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.RemoveFromWishlist(userID, productID, size)
}

// Private helper methods

func (s *Service) loadProductDetails(items []WishlistItemResponse) error {
	for i := range items {
		var prod product.Product
		err := s.db.Preload("Category").Preload("Images").
			Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			items[i].IsAvailable = false
			continue
		}

		items[i].Product = &prod
		items[i].IsAvailable = prod.IsAvailable && prod.IsInStock()

		currentPrice := prod.Price
		if items[i].Size != "" {
			var size product.ProductSize
			err := s.db.Where("product_id = ? AND name = ?", prod.ID, items[i].Size).First(&size).Error
			if err == nil {
				currentPrice = prod.PriceForSize(&size)
			}
		}
		items[i].CurrentPrice = currentPrice
		items[i].PriceDropped = items[i].PriceWhenAdded > 0 && currentPrice < items[i].PriceWhenAdded
	}

	return nil
}
