// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a bakery product
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SKU               string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string         `gorm:"type:text" json:"description"`
	ShortDesc         string         `gorm:"size:500" json:"short_description"`
	Price             int64          `gorm:"not null" json:"price"` // Price in VND
	ComparePrice      int64          `json:"compare_price"`         // Original price for discounts
	CategoryID        uint           `gorm:"not null;index" json:"category_id"`
	IsAvailable       bool           `gorm:"default:true" json:"is_available"`
	IsFeatured        bool           `gorm:"default:false" json:"is_featured"`
	Stock             int            `gorm:"default:0" json:"stock"`
	Sold              int            `gorm:"default:0" json:"sold"`
	Rating            float64        `gorm:"default:0" json:"rating"`
	RatingCount       int            `gorm:"default:0" json:"rating_count"`
	LowStockThreshold int            `gorm:"default:5" json:"low_stock_threshold"`
	Ingredients       string         `gorm:"type:text" json:"ingredients"`
	Allergens         string         `gorm:"size:500" json:"allergens"` // Comma-separated
	ShelfLifeHours    int            `gorm:"default:48" json:"shelf_life_hours"`
	Tags              string         `gorm:"size:500" json:"tags"` // Comma-separated tags
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Sizes    []ProductSize  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes,omitempty"`
}

// Category represents product categories (cakes, viennoiserie, breads, ...)
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Image       string         `gorm:"size:500" json:"image"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductSize represents a selectable size for a product (e.g. 16cm, 20cm cake)
type ProductSize struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	Name       string         `gorm:"not null;size:100" json:"name"`
	PriceDelta int64          `gorm:"default:0" json:"price_delta"` // Added to base price in VND
	SortOrder  int            `gorm:"default:0" json:"sort_order"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (Category) TableName() string     { return "categories" }
func (ProductImage) TableName() string { return "product_images" }
func (ProductSize) TableName() string  { return "product_sizes" }

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// PriceForSize returns the unit price with the size delta applied.
func (p *Product) PriceForSize(size *ProductSize) int64 {
	if size == nil {
		return p.Price
	}
	return p.Price + size.PriceDelta
}

// PrimaryImageURL returns the primary image URL, or the first image as fallback.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

func (p *Product) GetDiscountPercentage() int {
	if p.ComparePrice > 0 && p.Price < p.ComparePrice {
		return int(((p.ComparePrice - p.Price) * 100) / p.ComparePrice)
	}
	return 0
}
