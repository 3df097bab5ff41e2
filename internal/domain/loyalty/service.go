// internal/domain/loyalty/service.go
package loyalty

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
)

// Service handles loyalty point business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new loyalty service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// HistoryResponse represents a loyalty ledger page
type HistoryResponse struct {
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
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

// ExpiryResult summarizes one expiry run
type ExpiryResult struct {
	AccountsExpired int   `json:"accounts_expired"`
	PointsExpired   int64 `json:"points_expired"`
}

// GetAccount returns the user's loyalty account, creating it on first access
func (s *Service) GetAccount(userID uint) (*Account, error) {
	var account Account
	err := s.db.Where(Account{UserID: userID}).FirstOrCreate(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty account: %w", err)
	}
	return &account, nil
}

// EarnFromOrder credits points for a delivered order: one point per
// EarnDivisor VND of the order total, rounded down.
func (s *Service) EarnFromOrder(userID uint, orderTotal int64, orderNumber string) (int64, error) {
	points := orderTotal / s.config.Loyalty.EarnDivisor
	if points <= 0 {
		return 0, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account Account
		if err := tx.Where(Account{UserID: userID}).FirstOrCreate(&account).Error; err != nil {
			return fmt.Errorf("failed to load loyalty account: %w", err)
		}

		now := time.Now().UTC()
		err := tx.Model(&account).Updates(map[string]interface{}{
			"points":          gorm.Expr("points + ?", points),
			"lifetime_points": gorm.Expr("lifetime_points + ?", points),
			"last_earned_at":  now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to credit points: %w", err)
		}

		return tx.Create(&Transaction{
			AccountID:   account.ID,
			Type:        TransactionTypeEarn,
			Points:      points,
			Description: fmt.Sprintf("Order %s delivered", orderNumber),
			Reference:   orderNumber,
		}).Error
	})
	if err != nil {
		return 0, err
	}

	return points, nil
}

// History returns the user's ledger, newest first, paginated
func (s *Service) History(userID uint, page, limit int) (*HistoryResponse, error) {
	account, err := s.GetAccount(userID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	query := s.db.Model(&Transaction{}).Where("account_id = ?", account.ID)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var transactions []Transaction
	err = query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &HistoryResponse{
		Account:      *account,
		Transactions: transactions,
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

// ExpireStalePoints zeroes every account whose last earn is older than the
// configured expiry window, writing an expire entry per account. Each
// account is settled in its own transaction so one failure does not undo
// the rest of the run.
func (s *Service) ExpireStalePoints(now time.Time) (*ExpiryResult, error) {
	cutoff := now.Add(-s.config.Loyalty.ExpiryAfter)

	var stale []Account
	err := s.db.
		Where("points > 0 AND last_earned_at IS NOT NULL AND last_earned_at < ?", cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale accounts: %w", err)
	}

	result := &ExpiryResult{}
	for _, account := range stale {
		expired := account.Points
		applied := false
		err := s.db.Transaction(func(tx *gorm.DB) error {
			// Guard against a concurrent earn between the scan and this write
			res := tx.Model(&Account{}).
				Where("id = ? AND points = ? AND last_earned_at < ?", account.ID, expired, cutoff).
				Update("points", 0)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			applied = true
			return tx.Create(&Transaction{
				AccountID:   account.ID,
				Type:        TransactionTypeExpire,
				Points:      -expired,
				Description: fmt.Sprintf("Points expired after %s of inactivity", s.config.Loyalty.ExpiryAfter),
			}).Error
		})
		if err != nil {
			return result, fmt.Errorf("failed to expire account %d: %w", account.ID, err)
		}
		if applied {
			result.AccountsExpired++
			result.PointsExpired += expired
		}
	}

	return result, nil
}
