// internal/domain/flashsale/service.go
package flashsale

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
)

// Service handles flash-sale business logic. Quota holds live in Redis with
// a TTL so abandoned reservations free themselves; confirmed sales are
// counted in the database.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new flash-sale service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CreateFlashSaleRequest represents flash-sale creation data
type CreateFlashSaleRequest struct {
	ProductID uint      `json:"product_id" binding:"required"`
	SalePrice int64     `json:"sale_price" binding:"required,min=1"`
	Quota     int       `json:"quota" binding:"required,min=1"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	EndsAt    time.Time `json:"ends_at" binding:"required"`
}

// ReserveRequest represents a quota hold request
type ReserveRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// SaleStatus represents one running sale with its live availability
type SaleStatus struct {
	FlashSale
	Remaining int `json:"remaining"`
}

// Create creates a new flash sale
func (s *Service) Create(req *CreateFlashSaleRequest) (*FlashSale, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("sale end must be after sale start")
	}

	var count int64
	err := s.db.Table("products").Where("id = ?", req.ProductID).Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("product %d not found", req.ProductID)
	}

	sale := FlashSale{
		ProductID: req.ProductID,
		SalePrice: req.SalePrice,
		Quota:     req.Quota,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		IsActive:  true,
	}
	if err := s.db.Create(&sale).Error; err != nil {
		return nil, fmt.Errorf("failed to create flash sale: %w", err)
	}

	return &sale, nil
}

// ActiveSales returns currently running sales with their remaining quota
func (s *Service) ActiveSales() ([]SaleStatus, error) {
	now := time.Now().UTC()
	var sales []FlashSale
	err := s.db.Preload("Product").Preload("Product.Images").
		Where("is_active = ? AND starts_at <= ? AND ends_at >= ?", true, now, now).
		Order("ends_at ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve flash sales: %w", err)
	}

	statuses := make([]SaleStatus, 0, len(sales))
	for _, sale := range sales {
		held, err := s.heldQuantity(sale.ID)
		if err != nil {
			return nil, err
		}
		remaining := sale.Quota - sale.SoldCount - held
		if remaining < 0 {
			remaining = 0
		}
		statuses = append(statuses, SaleStatus{FlashSale: sale, Remaining: remaining})
	}

	return statuses, nil
}

// Reserve places a hold on sale quota for the user. A user holds at most one
// reservation per sale; reserving again replaces the previous hold. The hold
// expires on its own after the configured TTL.
func (s *Service) Reserve(saleID, userID uint, req *ReserveRequest) (*Reservation, error) {
	var sale FlashSale
	if err := s.db.First(&sale, saleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("flash sale not found")
		}
		return nil, fmt.Errorf("failed to load flash sale: %w", err)
	}

	now := time.Now().UTC()
	if !sale.IsRunningAt(now) {
		return nil, fmt.Errorf("flash sale is not running")
	}

	// Exclude the user's own current hold so a re-reserve is not double-counted
	held, err := s.heldQuantity(sale.ID)
	if err != nil {
		return nil, err
	}
	if existing, _ := s.getHold(sale.ID, userID); existing != nil {
		held -= existing.Quantity
	}

	if sale.SoldCount+held+req.Quantity > sale.Quota {
		return nil, fmt.Errorf("flash sale quota exhausted")
	}

	reservation := &Reservation{
		SaleID:    sale.ID,
		UserID:    userID,
		Quantity:  req.Quantity,
		SalePrice: sale.SalePrice,
		ExpiresAt: now.Add(s.config.FlashSale.ReservationTTL),
	}

	data, err := json.Marshal(reservation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reservation: %w", err)
	}

	ctx := context.Background()
	err = s.redisClient.Set(ctx, holdKey(sale.ID, userID), data, s.config.FlashSale.ReservationTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}

	return reservation, nil
}

// Release drops the user's hold, if any
func (s *Service) Release(saleID, userID uint) error {
	ctx := context.Background()
	if err := s.redisClient.Del(ctx, holdKey(saleID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}

// Confirm converts the user's hold into a confirmed sale. The quota
// condition is re-checked by the UPDATE itself, so two confirms racing for
// the last units cannot both succeed.
func (s *Service) Confirm(saleID, userID uint) (*Reservation, error) {
	hold, err := s.getHold(saleID, userID)
	if err != nil {
		return nil, err
	}
	if hold == nil {
		return nil, fmt.Errorf("no active reservation; it may have expired")
	}

	result := s.db.Model(&FlashSale{}).
		Where("id = ? AND sold_count + ? <= quota", saleID, hold.Quantity).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", hold.Quantity))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("flash sale quota exhausted")
	}

	if err := s.Release(saleID, userID); err != nil {
		fmt.Printf("Warning: failed to drop confirmed hold for sale %d user %d: %v\n", saleID, userID, err)
	}

	return hold, nil
}

// Private helper methods

func (s *Service) getHold(saleID, userID uint) (*Reservation, error) {
	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, holdKey(saleID, userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	var hold Reservation
	if err := json.Unmarshal([]byte(data), &hold); err != nil {
		return nil, fmt.Errorf("failed to decode reservation: %w", err)
	}
	return &hold, nil
}

// heldQuantity sums all live holds on a sale. Expired holds have already
// been dropped by Redis, so the scan only sees quota that is really held.
func (s *Service) heldQuantity(saleID uint) (int, error) {
	ctx := context.Background()
	pattern := fmt.Sprintf("flashsale:hold:%d:*", saleID)

	var total int
	iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.redisClient.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read hold: %w", err)
		}
		var hold Reservation
		if err := json.Unmarshal([]byte(data), &hold); err != nil {
			continue
		}
		total += hold.Quantity
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan holds: %w", err)
	}

	return total, nil
}

func holdKey(saleID, userID uint) string {
	return fmt.Sprintf("flashsale:hold:%d:%d", saleID, userID)
}
