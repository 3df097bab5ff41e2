package loyalty

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/bakery-backend/internal/config"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Account{}, &Transaction{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	cfg := &config.Config{
		Loyalty: config.LoyaltyConfig{
			EarnDivisor: 10000,
			ExpiryAfter: 365 * 24 * time.Hour,
		},
	}
	return NewService(db, cfg), db
}

func TestEarnFromOrder(t *testing.T) {
	svc, db := newTestService(t)

	points, err := svc.EarnFromOrder(1, 315000, "ORD-20260830-000001")
	if err != nil {
		t.Fatalf("EarnFromOrder: %v", err)
	}
	if points != 31 {
		t.Errorf("expected 31 points for 315000 VND, got %d", points)
	}

	account, err := svc.GetAccount(1)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if account.Points != 31 || account.LifetimePoints != 31 {
		t.Errorf("expected balance 31/31, got %d/%d", account.Points, account.LifetimePoints)
	}
	if account.LastEarnedAt == nil {
		t.Error("expected last_earned_at to be set")
	}

	var txn Transaction
	if err := db.Where("account_id = ?", account.ID).First(&txn).Error; err != nil {
		t.Fatalf("failed to load ledger entry: %v", err)
	}
	if txn.Type != TransactionTypeEarn || txn.Points != 31 {
		t.Errorf("unexpected ledger entry: %+v", txn)
	}
	if txn.Reference != "ORD-20260830-000001" {
		t.Errorf("expected order reference, got %q", txn.Reference)
	}
}

func TestEarnFromOrderBelowDivisorIsNoop(t *testing.T) {
	svc, db := newTestService(t)

	points, err := svc.EarnFromOrder(1, 9999, "ORD-20260830-000002")
	if err != nil {
		t.Fatalf("EarnFromOrder: %v", err)
	}
	if points != 0 {
		t.Errorf("expected 0 points, got %d", points)
	}

	var count int64
	db.Model(&Account{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no account created on no-op earn, got %d", count)
	}
}

func TestEarnAccumulates(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.EarnFromOrder(1, 100000, "A"); err != nil {
		t.Fatalf("EarnFromOrder: %v", err)
	}
	if _, err := svc.EarnFromOrder(1, 250000, "B"); err != nil {
		t.Fatalf("EarnFromOrder: %v", err)
	}

	account, err := svc.GetAccount(1)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if account.Points != 35 {
		t.Errorf("expected accumulated balance 35, got %d", account.Points)
	}
}

func TestExpireStalePoints(t *testing.T) {
	svc, db := newTestService(t)
	now := time.Now().UTC()

	stale := now.Add(-400 * 24 * time.Hour)
	fresh := now.Add(-30 * 24 * time.Hour)

	accounts := []Account{
		{UserID: 1, Points: 120, LifetimePoints: 300, LastEarnedAt: &stale},
		{UserID: 2, Points: 45, LifetimePoints: 45, LastEarnedAt: &fresh},
		{UserID: 3, Points: 0, LifetimePoints: 80, LastEarnedAt: &stale},
	}
	for i := range accounts {
		if err := db.Create(&accounts[i]).Error; err != nil {
			t.Fatalf("failed to seed account: %v", err)
		}
	}

	result, err := svc.ExpireStalePoints(now)
	if err != nil {
		t.Fatalf("ExpireStalePoints: %v", err)
	}
	if result.AccountsExpired != 1 {
		t.Errorf("expected 1 account expired, got %d", result.AccountsExpired)
	}
	if result.PointsExpired != 120 {
		t.Errorf("expected 120 points expired, got %d", result.PointsExpired)
	}

	var expired Account
	if err := db.Where("user_id = ?", uint(1)).First(&expired).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if expired.Points != 0 {
		t.Errorf("expected zeroed balance, got %d", expired.Points)
	}
	if expired.LifetimePoints != 300 {
		t.Errorf("lifetime points must not change on expiry, got %d", expired.LifetimePoints)
	}

	var untouched Account
	if err := db.Where("user_id = ?", uint(2)).First(&untouched).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if untouched.Points != 45 {
		t.Errorf("expected active account untouched, got %d", untouched.Points)
	}

	var txn Transaction
	if err := db.Where("account_id = ? AND type = ?", expired.ID, TransactionTypeExpire).First(&txn).Error; err != nil {
		t.Fatalf("failed to load expire ledger entry: %v", err)
	}
	if txn.Points != -120 {
		t.Errorf("expected ledger entry of -120 points, got %d", txn.Points)
	}

	// A second run finds nothing left to expire
	again, err := svc.ExpireStalePoints(now)
	if err != nil {
		t.Fatalf("ExpireStalePoints: %v", err)
	}
	if again.AccountsExpired != 0 || again.PointsExpired != 0 {
		t.Errorf("expected idempotent rerun, got %+v", again)
	}
}

func TestHistoryPagination(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 5; i++ {
		if _, err := svc.EarnFromOrder(1, 100000, "ORD"); err != nil {
			t.Fatalf("EarnFromOrder: %v", err)
		}
	}

	page, err := svc.History(1, 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page.Transactions) != 2 {
		t.Errorf("expected 2 transactions on page, got %d", len(page.Transactions))
	}
	if page.Pagination.Total != 5 || page.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", page.Pagination)
	}
	if !page.Pagination.HasNext || page.Pagination.HasPrev {
		t.Errorf("unexpected pagination flags: %+v", page.Pagination)
	}
	if page.Account.Points != 50 {
		t.Errorf("expected account balance 50, got %d", page.Account.Points)
	}
}
