package cart

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/product"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

	err = db.AutoMigrate(
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductSize{},
		&Cart{},
		&CartItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, nil, &config.Config{}), db
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

func TestAddItemComputesCachedTotals(t *testing.T) {
	svc, db := newTestService(t)
	croissant := seedProduct(t, db, "croissant", 50000, 10)
	macaron := seedProduct(t, db, "macaron", 15000, 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: croissant.ID, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c, err := svc.AddItem(1, &AddItemRequest{ProductID: macaron.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if c.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", c.TotalItems)
	}
	if c.TotalPrice != 80000 {
		t.Errorf("expected total price 80000, got %d", c.TotalPrice)
	}
	if len(c.Items) != 2 {
		t.Errorf("expected 2 cart lines, got %d", len(c.Items))
	}
}

func TestAddItemMergesIdenticalLines(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)

	custom := map[string]interface{}{"message": "Happy Birthday", "candles": true}
	reordered := map[string]interface{}{"candles": true, "message": "Happy Birthday"}

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: cake.ID, Quantity: 1, Customization: custom}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c, err := svc.AddItem(1, &AddItemRequest{ProductID: cake.ID, Quantity: 2, Customization: reordered})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Errorf("expected merged quantity 3, got %d", c.Items[0].Quantity)
	}

	// A different customization is a different line
	c, err = svc.AddItem(1, &AddItemRequest{
		ProductID:     cake.ID,
		Quantity:      1,
		Customization: map[string]interface{}{"message": "Congratulations"},
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(c.Items) != 2 {
		t.Errorf("expected 2 lines after distinct customization, got %d", len(c.Items))
	}
}

func TestAddItemAppliesSizeDelta(t *testing.T) {
	svc, db := newTestService(t)
	cake := seedProduct(t, db, "entremet", 420000, 10)
	size := product.ProductSize{ProductID: cake.ID, Name: "20cm", PriceDelta: 80000, IsActive: true}
	if err := db.Create(&size).Error; err != nil {
		t.Fatalf("failed to seed size: %v", err)
	}

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: cake.ID, Quantity: 1, Size: "20cm"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if c.Items[0].Price != 500000 {
		t.Errorf("expected size-adjusted unit price 500000, got %d", c.Items[0].Price)
	}

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: cake.ID, Quantity: 1, Size: "99cm"}); err == nil {
		t.Error("expected error for unknown size")
	}
}

func TestPriceSnapshotSurvivesProductEdit(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "sourdough", 95000, 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Raise the live price; the line keeps its add-time snapshot
	if err := db.Model(&product.Product{}).Where("id = ?", bread.ID).Update("price", 120000).Error; err != nil {
		t.Fatalf("failed to update price: %v", err)
	}

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(c.Items))
	}
	if c.Items[0].Price != 95000 {
		t.Errorf("expected snapshot price 95000, got %d", c.Items[0].Price)
	}
	if c.TotalPrice != 190000 {
		t.Errorf("expected total from snapshot 190000, got %d", c.TotalPrice)
	}
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "baguette", 35000, 10)

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	itemID := c.Items[0].ID

	c, err = svc.UpdateItemQuantity(1, itemID, 0)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}

	if len(c.Items) != 0 {
		t.Errorf("expected empty cart after zero-quantity update, got %d lines", len(c.Items))
	}
	if c.TotalItems != 0 || c.TotalPrice != 0 {
		t.Errorf("expected zeroed totals, got items=%d price=%d", c.TotalItems, c.TotalPrice)
	}
}

func TestRemoveItemScopedToOwner(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "baguette", 35000, 10)

	c, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Another user cannot touch the line
	got, err := svc.RemoveItem(2, c.Items[0].ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil result for foreign cart item")
	}

	reloaded, err := svc.GetOrCreateCart(1)
	if err != nil {
		t.Fatalf("GetOrCreateCart: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Errorf("expected the line to survive, got %d lines", len(reloaded.Items))
	}
}

func TestClearCartZeroesTotals(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "baguette", 35000, 10)

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if err := svc.ClearCart(1); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	c, err := svc.GetOrCreateCart(1)
	if err != nil {
		t.Fatalf("GetOrCreateCart: %v", err)
	}
	if len(c.Items) != 0 || c.TotalItems != 0 || c.TotalPrice != 0 {
		t.Errorf("expected empty cart, got lines=%d items=%d price=%d", len(c.Items), c.TotalItems, c.TotalPrice)
	}

	// Clearing a cart that was never created is a no-op
	if err := svc.ClearCart(42); err != nil {
		t.Errorf("ClearCart for unknown user: %v", err)
	}
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	svc, db := newTestService(t)
	bread := seedProduct(t, db, "baguette", 35000, 10)
	if err := db.Model(&product.Product{}).Where("id = ?", bread.ID).Update("is_available", false).Error; err != nil {
		t.Fatalf("failed to update product: %v", err)
	}

	if _, err := svc.AddItem(1, &AddItemRequest{ProductID: bread.ID, Quantity: 1}); err == nil {
		t.Error("expected error for unavailable product")
	}
}
