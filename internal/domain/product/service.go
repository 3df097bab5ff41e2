// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/your-org/bakery-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	Search     string `form:"search"`
	CategoryID uint   `form:"category_id"`
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
	Featured   *bool  `form:"featured"`
	Available  *bool  `form:"available"`
	Sort       string `form:"sort,default=newest"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU               string        `json:"sku" binding:"required"`
	Name              string        `json:"name" binding:"required"`
	Slug              string        `json:"slug" binding:"required"`
	Description       string        `json:"description"`
	ShortDesc         string        `json:"short_description"`
	Price             int64         `json:"price" binding:"required,min=0"`
	ComparePrice      int64         `json:"compare_price"`
	CategoryID        uint          `json:"category_id" binding:"required"`
	IsAvailable       *bool         `json:"is_available"`
	IsFeatured        bool          `json:"is_featured"`
	Stock             int           `json:"stock" binding:"min=0"`
	LowStockThreshold int           `json:"low_stock_threshold"`
	Ingredients       string        `json:"ingredients"`
	Allergens         string        `json:"allergens"`
	ShelfLifeHours    int           `json:"shelf_life_hours"`
	Tags              string        `json:"tags"`
	Images            []ProductImage `json:"images"`
	Sizes             []ProductSize  `json:"sizes"`
}

// UpdateProductRequest represents product update data; nil fields are left untouched
type UpdateProductRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ShortDesc    *string `json:"short_description"`
	Price        *int64  `json:"price"`
	ComparePrice *int64  `json:"compare_price"`
	CategoryID   *uint   `json:"category_id"`
	IsAvailable  *bool   `json:"is_available"`
	IsFeatured   *bool   `json:"is_featured"`
	Ingredients  *string `json:"ingredients"`
	Allergens    *string `json:"allergens"`
	Tags         *string `json:"tags"`
}

// ListResponse represents products with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
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

// List retrieves products with filtering, sorting and pagination
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Sizes", "is_active = ?", true)

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}
	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}
	if req.Featured != nil {
		query = query.Where("is_featured = ?", *req.Featured)
	}
	if req.Available != nil {
		query = query.Where("is_available = ?", *req.Available)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.Sort))

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Get retrieves a single product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Sizes", "is_active = ?", true).
		First(&prod, id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetBySlug retrieves a single product by slug
func (s *Service) GetBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Sizes", "is_active = ?", true).
		Where("slug = ?", slug).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// Create creates a new product
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	// Slug and SKU must be unique
	var existing Product
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with slug '%s' already exists", req.Slug)
	}
	if err := s.db.Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with SKU '%s' already exists", req.SKU)
	}

	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, fmt.Errorf("category not found")
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	shelfLife := req.ShelfLifeHours
	if shelfLife == 0 {
		shelfLife = 48
	}
	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = 5
	}

	prod := Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Slug:              req.Slug,
		Description:       req.Description,
		ShortDesc:         req.ShortDesc,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		CategoryID:        req.CategoryID,
		IsAvailable:       available,
		IsFeatured:        req.IsFeatured,
		Stock:             req.Stock,
		LowStockThreshold: threshold,
		Ingredients:       req.Ingredients,
		Allergens:         req.Allergens,
		ShelfLifeHours:    shelfLife,
		Tags:              req.Tags,
		Images:            req.Images,
		Sizes:             req.Sizes,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.Get(prod.ID)
}

// Update applies a partial update to a product
func (s *Service) Update(id uint, req *UpdateProductRequest) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.CategoryID != nil {
		var category Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			return nil, fmt.Errorf("category not found")
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.Ingredients != nil {
		updates["ingredients"] = *req.Ingredients
	}
	if req.Allergens != nil {
		updates["allergens"] = *req.Allergens
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if len(updates) > 0 {
		if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.Get(id)
}

// Delete soft-deletes a product
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// AdjustStock sets the absolute stock level for a product
func (s *Service) AdjustStock(id uint, stock int) (*Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	result := s.db.Model(&Product{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("product not found")
	}

	return s.Get(id)
}

// ListCategories retrieves all active categories ordered for display
func (s *Service) ListCategories() ([]Category, error) {
	var categories []Category
	err := s.db.Where("is_active = ?", true).Order("sort_order ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

func (s *Service) buildOrderClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "rating":
		return "rating DESC, rating_count DESC"
	case "best_selling":
		return "sold DESC"
	case "newest":
		fallthrough
	default:
		return "created_at DESC"
	}
}
