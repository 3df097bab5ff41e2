// internal/domain/loyalty/entity.go
package loyalty

import (
	"time"
)

// TransactionType enumerates loyalty ledger entry kinds
type TransactionType string

const (
	TransactionTypeEarn    TransactionType = "earn"
	TransactionTypeRedeem  TransactionType = "redeem"
	TransactionTypeExpire  TransactionType = "expire"
	TransactionTypeAdjust  TransactionType = "adjust"
)

// Account represents a user's loyalty point balance
type Account struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Points         int64      `json:"points" gorm:"default:0"`
	LifetimePoints int64      `json:"lifetime_points" gorm:"default:0"`
	LastEarnedAt   *time.Time `json:"last_earned_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for Account model
func (Account) TableName() string {
	return "loyalty_accounts"
}

// Transaction represents one loyalty ledger entry
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	AccountID   uint            `json:"account_id" gorm:"not null;index"`
	Type        TransactionType `json:"type" gorm:"not null;size:20"`
	Points      int64           `json:"points" gorm:"not null"` // negative for redeem/expire
	Description string          `json:"description"`
	Reference   string          `json:"reference" gorm:"size:50"` // order number when earned from an order
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName returns the table name for Transaction model
func (Transaction) TableName() string {
	return "loyalty_transactions"
}
