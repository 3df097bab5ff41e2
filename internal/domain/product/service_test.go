package product

import (
	"strings"
	"testing"

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

	if err := db.AutoMigrate(&Category{}, &Product{}, &ProductImage{}, &ProductSize{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return NewService(db, &config.Config{}), db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *Category {
	t.Helper()
	c := Category{Name: name, Slug: name, IsActive: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return &c
}

func TestCreateProduct(t *testing.T) {
	svc, db := newTestService(t)
	cat := seedCategory(t, db, "artisan-breads")

	prod, err := svc.Create(&CreateProductRequest{
		SKU:        "BRD-001",
		Name:       "Signature Sourdough",
		Slug:       "signature-sourdough",
		Price:      95000,
		CategoryID: cat.ID,
		Stock:      20,
		Sizes: []ProductSize{
			{Name: "500g", PriceDelta: 0, IsActive: true},
			{Name: "1kg", PriceDelta: 60000, IsActive: true},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !prod.IsAvailable {
		t.Error("expected products to default to available")
	}
	if prod.ShelfLifeHours != 48 || prod.LowStockThreshold != 5 {
		t.Errorf("expected defaults applied, got shelf=%d threshold=%d", prod.ShelfLifeHours, prod.LowStockThreshold)
	}
	if len(prod.Sizes) != 2 {
		t.Errorf("expected 2 sizes, got %d", len(prod.Sizes))
	}

	// Duplicate slug and SKU are rejected
	if _, err := svc.Create(&CreateProductRequest{
		SKU: "BRD-002", Name: "Other", Slug: "signature-sourdough", Price: 1000, CategoryID: cat.ID,
	}); err == nil || !strings.Contains(err.Error(), "slug") {
		t.Errorf("expected slug conflict, got %v", err)
	}
	if _, err := svc.Create(&CreateProductRequest{
		SKU: "BRD-001", Name: "Other", Slug: "other", Price: 1000, CategoryID: cat.ID,
	}); err == nil || !strings.Contains(err.Error(), "SKU") {
		t.Errorf("expected SKU conflict, got %v", err)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateProductRequest{
		SKU: "X", Name: "X", Slug: "x", Price: 1000, CategoryID: 99,
	})
	if err == nil || !strings.Contains(err.Error(), "category") {
		t.Errorf("expected category error, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, db := newTestService(t)
	breads := seedCategory(t, db, "artisan-breads")
	cakes := seedCategory(t, db, "cakes")

	seed := []Product{
		{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: breads.ID, IsAvailable: true},
		{SKU: "B", Name: "Baguette", Slug: "baguette", Price: 35000, CategoryID: breads.ID, IsAvailable: true},
		{SKU: "C", Name: "Dark Chocolate Entremet", Slug: "entremet", Price: 420000, CategoryID: cakes.ID, IsAvailable: true, IsFeatured: true},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	t.Run("by category", func(t *testing.T) {
		resp, err := svc.List(&ListRequest{CategoryID: breads.ID})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if resp.Pagination.Total != 2 {
			t.Errorf("expected 2 breads, got %d", resp.Pagination.Total)
		}
	})

	t.Run("search case-insensitive", func(t *testing.T) {
		resp, err := svc.List(&ListRequest{Search: "CHOCOLATE"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if resp.Pagination.Total != 1 || resp.Products[0].Slug != "entremet" {
			t.Errorf("unexpected search result: %+v", resp.Products)
		}
	})

	t.Run("price range", func(t *testing.T) {
		resp, err := svc.List(&ListRequest{MinPrice: 50000, MaxPrice: 100000})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if resp.Pagination.Total != 1 || resp.Products[0].Slug != "sourdough" {
			t.Errorf("unexpected price filter result: %+v", resp.Products)
		}
	})

	t.Run("featured only", func(t *testing.T) {
		featured := true
		resp, err := svc.List(&ListRequest{Featured: &featured})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if resp.Pagination.Total != 1 {
			t.Errorf("expected 1 featured product, got %d", resp.Pagination.Total)
		}
	})

	t.Run("price sort", func(t *testing.T) {
		resp, err := svc.List(&ListRequest{Sort: "price_asc"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if resp.Products[0].Slug != "baguette" {
			t.Errorf("expected cheapest first, got %s", resp.Products[0].Slug)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := svc.List(&ListRequest{Page: 2, Limit: 2})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(resp.Products) != 1 || !resp.Pagination.HasPrev || resp.Pagination.HasNext {
			t.Errorf("unexpected page 2: %+v", resp.Pagination)
		}
	})
}

func TestGetBySlug(t *testing.T) {
	svc, db := newTestService(t)
	cat := seedCategory(t, db, "artisan-breads")
	p := Product{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: cat.ID, IsAvailable: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	got, err := svc.GetBySlug("sourdough")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected product %d, got %d", p.ID, got.ID)
	}

	if _, err := svc.GetBySlug("missing"); err == nil {
		t.Error("expected error for unknown slug")
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, db := newTestService(t)
	cat := seedCategory(t, db, "artisan-breads")
	p := Product{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: cat.ID, IsAvailable: true, Description: "wild yeast"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	newPrice := int64(105000)
	updated, err := svc.Update(p.ID, &UpdateProductRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Price != 105000 {
		t.Errorf("expected updated price, got %d", updated.Price)
	}
	if updated.Description != "wild yeast" {
		t.Errorf("untouched field changed: %q", updated.Description)
	}
}

func TestDeleteSoftDeletes(t *testing.T) {
	svc, db := newTestService(t)
	cat := seedCategory(t, db, "artisan-breads")
	p := Product{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: cat.ID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	if err := svc.Delete(p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(p.ID); err == nil {
		t.Error("expected deleted product to be invisible")
	}

	// The row survives for order history
	var count int64
	db.Unscoped().Model(&Product{}).Count(&count)
	if count != 1 {
		t.Errorf("expected soft-deleted row to remain, got %d rows", count)
	}

	if err := svc.Delete(999); err == nil {
		t.Error("expected error deleting unknown product")
	}
}

func TestAdjustStock(t *testing.T) {
	svc, db := newTestService(t)
	cat := seedCategory(t, db, "artisan-breads")
	p := Product{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: cat.ID, Stock: 3}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	updated, err := svc.AdjustStock(p.ID, 40)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if updated.Stock != 40 {
		t.Errorf("expected stock 40, got %d", updated.Stock)
	}

	if _, err := svc.AdjustStock(p.ID, -1); err == nil {
		t.Error("expected rejection of negative stock")
	}
}
