package order

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/domain/product"
	"github.com/your-org/bakery-backend/internal/domain/user"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache memory DB lets the service open more than one
	// connection: CreateOrder queries the voucher service's own handle
	// while its transaction holds another connection.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying connection: %v", err)
	}
	// Keep idle connections alive so the shared memory DB persists for
	// the duration of the test.
	sqlDB.SetMaxIdleConns(4)

	err = db.AutoMigrate(
		&user.User{},
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductSize{},
		&Order{},
		&OrderItem{},
		&voucher.Voucher{},
		&loyalty.Account{},
		&loyalty.Transaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		Loyalty: config.LoyaltyConfig{
			EarnDivisor: 10000,
			ExpiryAfter: 365 * 24 * time.Hour,
		},
	}
	return NewService(db, cfg, voucher.NewService(db, cfg), loyalty.NewService(db, cfg)), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *product.Product {
	t.Helper()
	p := product.Product{
		SKU:         "SKU-" + name,
		Name:        name,
		Slug:        name,
		Price:       price,
		CategoryID:  1,
		IsAvailable: true,
		Stock:       stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return &p
}

func testShipping() ShippingInfo {
	return ShippingInfo{
		RecipientName: "Nguyen Thi Mai",
		Phone:         "0901234567",
		AddressLine:   "25 Ly Thuong Kiet",
		Ward:          "Phan Chu Trinh",
		District:      "Hoan Kiem",
		City:          "Ha Noi",
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 10)

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: bread.ID, Quantity: 3}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if o.SubtotalAmount != 285000 {
		t.Errorf("expected subtotal 285000, got %d", o.SubtotalAmount)
	}
	if o.ShippingAmount != 30000 {
		t.Errorf("expected flat shipping 30000, got %d", o.ShippingAmount)
	}
	if o.TotalAmount != 315000 {
		t.Errorf("expected total 315000, got %d", o.TotalAmount)
	}
	if len(o.Items) != 1 || o.Items[0].ProductName != "sourdough" {
		t.Errorf("expected denormalized line for sourdough, got %+v", o.Items)
	}

	var p product.Product
	if err := db.First(&p, bread.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if p.Stock != 7 {
		t.Errorf("expected stock 7 after order, got %d", p.Stock)
	}
	if p.Sold != 3 {
		t.Errorf("expected sold 3 after order, got %d", p.Sold)
	}

	wantPrefix := fmt.Sprintf("ORD-%s-", time.Now().UTC().Format("20060102"))
	if !strings.HasPrefix(o.OrderNumber, wantPrefix) || len(o.OrderNumber) != len(wantPrefix)+6 {
		t.Errorf("unexpected order number format: %q", o.OrderNumber)
	}
}

func TestCreateOrderFreeShippingThreshold(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 2}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "bank_transfer",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if o.ShippingAmount != 0 {
		t.Errorf("expected free shipping above threshold, got %d", o.ShippingAmount)
	}
	if o.TotalAmount != 840000 {
		t.Errorf("expected total 840000, got %d", o.TotalAmount)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 5)
	cake := seedProduct(t, db, "entremet", 420000, 1)

	_, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items: []OrderLineRequest{
			{ProductID: bread.ID, Quantity: 2},
			{ProductID: cake.ID, Quantity: 3},
		},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if !strings.Contains(err.Error(), "Available: 1, Requested: 3") {
		t.Errorf("unexpected error message: %v", err)
	}

	// The first line's decrement must have been rolled back
	var p product.Product
	if err := db.First(&p, bread.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if p.Stock != 5 || p.Sold != 0 {
		t.Errorf("expected untouched stock after rollback, got stock=%d sold=%d", p.Stock, p.Sold)
	}

	var count int64
	db.Model(&Order{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no order rows after rollback, got %d", count)
	}
}

func TestCreateOrderAppliesVoucher(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)

	now := time.Now().UTC()
	v := voucher.Voucher{
		Code:          "SWEET10",
		DiscountType:  voucher.DiscountTypePercent,
		DiscountValue: 10,
		MaxDiscount:   50000,
		StartsAt:      now.Add(-time.Hour),
		ExpiresAt:     now.Add(time.Hour),
		UsageLimit:    1,
		IsActive:      true,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("failed to seed voucher: %v", err)
	}

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 2}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
		VoucherCode:   "sweet10",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// 10% of 840000 is 84000, capped at 50000
	if o.DiscountAmount != 50000 {
		t.Errorf("expected capped discount 50000, got %d", o.DiscountAmount)
	}
	if o.TotalAmount != 790000 {
		t.Errorf("expected total 790000, got %d", o.TotalAmount)
	}

	// Redemption is recorded after commit
	var reloaded voucher.Voucher
	if err := db.First(&reloaded, v.ID).Error; err != nil {
		t.Fatalf("failed to reload voucher: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Errorf("expected used count 1, got %d", reloaded.UsedCount)
	}
}

func TestCreateOrderVoucherPricesSizeDeltas(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 100000, 10)

	size := product.ProductSize{ProductID: cake.ID, Name: "20cm", PriceDelta: 100000, IsActive: true}
	if err := db.Create(&size).Error; err != nil {
		t.Fatalf("failed to seed size: %v", err)
	}

	now := time.Now().UTC()
	percent := voucher.Voucher{
		Code:          "TENOFF",
		DiscountType:  voucher.DiscountTypePercent,
		DiscountValue: 10,
		StartsAt:      now.Add(-time.Hour),
		ExpiresAt:     now.Add(time.Hour),
		IsActive:      true,
	}
	gated := voucher.Voucher{
		Code:          "BIG",
		DiscountType:  voucher.DiscountTypeFixed,
		DiscountValue: 20000,
		MinOrderValue: 150000,
		StartsAt:      now.Add(-time.Hour),
		ExpiresAt:     now.Add(time.Hour),
		IsActive:      true,
	}
	for _, v := range []voucher.Voucher{percent, gated} {
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("failed to seed voucher: %v", err)
		}
	}

	t.Run("percent discount uses the sized subtotal", func(t *testing.T) {
		o, err := svc.CreateOrder(1, &CreateOrderRequest{
			Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 1, Size: "20cm"}},
			ShippingInfo:  testShipping(),
			PaymentMethod: "cod",
			VoucherCode:   "TENOFF",
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if o.SubtotalAmount != 200000 {
			t.Fatalf("expected sized subtotal 200000, got %d", o.SubtotalAmount)
		}
		// 10% of 200000, not of the 100000 base price
		if o.DiscountAmount != 20000 {
			t.Errorf("expected discount 20000, got %d", o.DiscountAmount)
		}
	})

	t.Run("minimum-order gate sees the sized subtotal", func(t *testing.T) {
		o, err := svc.CreateOrder(1, &CreateOrderRequest{
			Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 1, Size: "20cm"}},
			ShippingInfo:  testShipping(),
			PaymentMethod: "cod",
			VoucherCode:   "BIG",
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if o.DiscountAmount != 20000 {
			t.Errorf("expected fixed discount 20000, got %d", o.DiscountAmount)
		}
	})

	t.Run("rejected voucher rolls back the stock decrement", func(t *testing.T) {
		var before product.Product
		if err := db.First(&before, cake.ID).Error; err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}

		_, err := svc.CreateOrder(1, &CreateOrderRequest{
			Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 1}},
			ShippingInfo:  testShipping(),
			PaymentMethod: "cod",
			VoucherCode:   "BIG",
		})
		if err == nil || !strings.Contains(err.Error(), "at least") {
			t.Fatalf("expected minimum-order rejection for the base price line, got %v", err)
		}

		var after product.Product
		if err := db.First(&after, cake.ID).Error; err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if after.Stock != before.Stock || after.Sold != before.Sold {
			t.Errorf("expected untouched counters after rejection, got stock=%d sold=%d", after.Stock, after.Sold)
		}
	})
}

func TestCreateOrderRejectsUsedUpVoucher(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)

	now := time.Now().UTC()
	v := voucher.Voucher{
		Code:          "ONCE",
		DiscountType:  voucher.DiscountTypeFixed,
		DiscountValue: 20000,
		StartsAt:      now.Add(-time.Hour),
		ExpiresAt:     now.Add(time.Hour),
		UsageLimit:    1,
		UsedCount:     1,
		IsActive:      true,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("failed to seed voucher: %v", err)
	}

	_, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 1}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
		VoucherCode:   "ONCE",
	})
	if err == nil {
		t.Fatal("expected rejection for exhausted voucher")
	}
}

func TestValidStatusTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipping, true},
		{OrderStatusShipping, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusShipping, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := ValidStatusTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidStatusTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 10)

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: bread.ID, Quantity: 1}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err = svc.UpdateStatus(o.ID, &UpdateStatusRequest{Status: OrderStatusDelivered})
	if err == nil || !strings.Contains(err.Error(), "invalid status transition") {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestPaymentPaidSetsTimestamp(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 10)

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: bread.ID, Quantity: 1}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "bank_transfer",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.PaidAt != nil {
		t.Fatal("expected paid_at unset on a pending order")
	}

	paid := PaymentStatusPaid
	updated, err := svc.UpdateStatus(o.ID, &UpdateStatusRequest{PaymentStatus: &paid})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.PaymentStatus != PaymentStatusPaid {
		t.Errorf("expected payment status paid, got %s", updated.PaymentStatus)
	}
	if updated.PaidAt == nil {
		t.Error("expected paid_at to be set on payment")
	}
}

func TestCancellationRestoresStock(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 10)

	o, err := svc.CreateOrder(1, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: bread.ID, Quantity: 4}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	cancelled, err := svc.UpdateStatus(o.ID, &UpdateStatusRequest{Status: OrderStatusCancelled})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if cancelled.Status != OrderStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}

	var p product.Product
	if err := db.First(&p, bread.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if p.Stock != 10 || p.Sold != 0 {
		t.Errorf("expected restored counters, got stock=%d sold=%d", p.Stock, p.Sold)
	}
}

func TestDeliveryAwardsLoyaltyPoints(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)

	o, err := svc.CreateOrder(7, &CreateOrderRequest{
		Items:         []OrderLineRequest{{ProductID: cake.ID, Quantity: 2}},
		ShippingInfo:  testShipping(),
		PaymentMethod: "cod",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	var delivered *Order
	for _, status := range []OrderStatus{OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipping, OrderStatusDelivered} {
		delivered, err = svc.UpdateStatus(o.ID, &UpdateStatusRequest{Status: status})
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
	}
	if delivered.DeliveredAt == nil {
		t.Error("expected delivered_at to be set")
	}

	var account loyalty.Account
	if err := db.Where("user_id = ?", uint(7)).First(&account).Error; err != nil {
		t.Fatalf("failed to load loyalty account: %v", err)
	}
	// 840000 VND at 10000 VND per point
	if account.Points != 84 {
		t.Errorf("expected 84 points after delivery, got %d", account.Points)
	}
}

func TestGetOrderAbsent(t *testing.T) {
	svc, _ := newTestService(t)

	detail, err := svc.GetOrder(999)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if detail != nil {
		t.Fatal("expected nil for absent order")
	}
}

func TestListAllOrdersStatusFilter(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 20)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateOrder(1, &CreateOrderRequest{
			Items:         []OrderLineRequest{{ProductID: bread.ID, Quantity: 1}},
			ShippingInfo:  testShipping(),
			PaymentMethod: "cod",
		}); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}

	first, err := svc.ListAllOrders(&ListRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListAllOrders: %v", err)
	}
	if first.Pagination.Total != 3 {
		t.Fatalf("expected 3 orders, got %d", first.Pagination.Total)
	}

	if _, err := svc.UpdateStatus(first.Orders[0].ID, &UpdateStatusRequest{Status: OrderStatusConfirmed}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	confirmed, err := svc.ListAllOrders(&ListRequest{Page: 1, Limit: 10, Status: OrderStatusConfirmed})
	if err != nil {
		t.Fatalf("ListAllOrders: %v", err)
	}
	if confirmed.Pagination.Total != 1 {
		t.Errorf("expected 1 confirmed order, got %d", confirmed.Pagination.Total)
	}
}
