package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/product"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	if err := db.AutoMigrate(&product.Category{}, &product.Product{}, &product.ProductImage{}, &product.ProductSize{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	h := NewProductHandler(db, &config.Config{})
	router := gin.New()
	router.GET("/products", h.List)
	router.GET("/products/:id", h.Get)
	return router, db
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination json.RawMessage `json:"pagination"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, body
}

func TestProductListEnvelope(t *testing.T) {
	router, db := setupRouter(t)

	cat := product.Category{Name: "artisan-breads", Slug: "artisan-breads", IsActive: true}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	p := product.Product{SKU: "A", Name: "Sourdough", Slug: "sourdough", Price: 95000, CategoryID: cat.ID, IsAvailable: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	code, body := doRequest(t, router, http.MethodGet, "/products")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !body.Success {
		t.Error("expected success envelope")
	}
	if len(body.Pagination) == 0 {
		t.Error("expected pagination block on list responses")
	}

	var products []product.Product
	if err := json.Unmarshal(body.Data, &products); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "sourdough" {
		t.Errorf("unexpected products payload: %+v", products)
	}
}

func TestProductGetBySlugOrID(t *testing.T) {
	router, db := setupRouter(t)

	cat := product.Category{Name: "cakes", Slug: "cakes", IsActive: true}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	p := product.Product{SKU: "C", Name: "Entremet", Slug: "entremet", Price: 420000, CategoryID: cat.ID, IsAvailable: true}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	if code, _ := doRequest(t, router, http.MethodGet, "/products/1"); code != http.StatusOK {
		t.Errorf("expected 200 by ID, got %d", code)
	}
	if code, _ := doRequest(t, router, http.MethodGet, "/products/entremet"); code != http.StatusOK {
		t.Errorf("expected 200 by slug, got %d", code)
	}

	code, body := doRequest(t, router, http.MethodGet, "/products/missing")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown slug, got %d", code)
	}
	if body.Success || body.Error == "" {
		t.Errorf("expected failure envelope, got %+v", body)
	}
}
