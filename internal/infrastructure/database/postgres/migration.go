// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/domain/cart"
	"github.com/your-org/bakery-backend/internal/domain/flashsale"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/domain/order"
	"github.com/your-org/bakery-backend/internal/domain/product"
	"github.com/your-org/bakery-backend/internal/domain/user"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
	"github.com/your-org/bakery-backend/internal/domain/wishlist"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},

		// Product domain
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductSize{},

		// Cart domain
		&cart.Cart{},
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},

		// Voucher domain
		&voucher.Voucher{},

		// Loyalty domain
		&loyalty.Account{},
		&loyalty.Transaction{},

		// Flash-sale domain
		&flashsale.FlashSale{},

		// Wishlist domain
		&wishlist.WishlistItem{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_available ON products(category_id, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_sold ON products(sold DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Product image and size indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_product_sizes_product_active ON product_sizes(product_id, is_active)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_line_identity ON cart_items(cart_id, product_id, size, customization_key)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_shipping_phone ON orders(shipping_phone)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Voucher indexes
		"CREATE INDEX IF NOT EXISTS idx_vouchers_active_window ON vouchers(is_active, starts_at, expires_at)",

		// Loyalty indexes
		"CREATE INDEX IF NOT EXISTS idx_loyalty_accounts_last_earned ON loyalty_accounts(last_earned_at)",
		"CREATE INDEX IF NOT EXISTS idx_loyalty_transactions_account ON loyalty_transactions(account_id, created_at DESC)",

		// Flash-sale indexes
		"CREATE INDEX IF NOT EXISTS idx_flash_sales_active_window ON flash_sales(is_active, starts_at, ends_at)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user ON wishlist_items(user_id, added_at DESC)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := m.seedVouchers(); err != nil {
		return fmt.Errorf("failed to seed vouchers: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the default product categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{
			Name:        "Artisan Breads",
			Slug:        "artisan-breads",
			Description: "Sourdough, baguettes and naturally leavened loaves baked daily",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Viennoiserie",
			Slug:        "viennoiserie",
			Description: "Croissants, pains au chocolat and laminated pastries",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Cakes & Entremets",
			Slug:        "cakes-entremets",
			Description: "Celebration cakes and layered French entremets",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Tarts",
			Slug:        "tarts",
			Description: "Fruit, chocolate and seasonal tarts",
			SortOrder:   4,
			IsActive:    true,
		},
		{
			Name:        "Macarons & Petits Fours",
			Slug:        "macarons-petits-fours",
			Description: "Delicate macarons and bite-sized confections",
			SortOrder:   5,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@maisonlevain.vn").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("changeme123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:         "admin@maisonlevain.vn",
			Password:      string(hashedPassword),
			FirstName:     "Store",
			LastName:      "Admin",
			IsActive:      true,
			IsAdmin:       true,
			EmailVerified: true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@maisonlevain.vn")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// seedProducts creates a starter catalog
func (m *Migration) seedProducts() error {
	log.Println("🥐 Seeding products...")

	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	var breads, viennoiserie, cakes product.Category
	if err := m.db.Where("slug = ?", "artisan-breads").First(&breads).Error; err != nil {
		return err
	}
	if err := m.db.Where("slug = ?", "viennoiserie").First(&viennoiserie).Error; err != nil {
		return err
	}
	if err := m.db.Where("slug = ?", "cakes-entremets").First(&cakes).Error; err != nil {
		return err
	}

	products := []product.Product{
		{
			SKU:               "BRD-SOUR-001",
			Name:              "Signature Sourdough",
			Slug:              "signature-sourdough",
			Description:       "Naturally leavened country loaf with a 48-hour cold ferment, blistered crust and open crumb.",
			ShortDesc:         "48-hour fermented country loaf",
			Price:             95000,
			CategoryID:        breads.ID,
			IsAvailable:       true,
			IsFeatured:        true,
			Stock:             40,
			LowStockThreshold: 8,
			Ingredients:       "Wheat flour, rye flour, water, sea salt, levain",
			Allergens:         "Gluten",
			ShelfLifeHours:    72,
			Tags:              "sourdough,bread,levain",
			Sizes: []product.ProductSize{
				{Name: "500g", PriceDelta: 0, SortOrder: 1, IsActive: true},
				{Name: "1kg", PriceDelta: 70000, SortOrder: 2, IsActive: true},
			},
		},
		{
			SKU:               "VNS-CRSN-001",
			Name:              "Butter Croissant",
			Slug:              "butter-croissant",
			Description:       "Classic croissant laminated with French cultured butter, baked golden every morning.",
			ShortDesc:         "Classic French butter croissant",
			Price:             45000,
			CategoryID:        viennoiserie.ID,
			IsAvailable:       true,
			IsFeatured:        true,
			Stock:             80,
			LowStockThreshold: 15,
			Ingredients:       "Wheat flour, butter, milk, sugar, yeast, salt",
			Allergens:         "Gluten, dairy",
			ShelfLifeHours:    24,
			Tags:              "croissant,viennoiserie,butter",
		},
		{
			SKU:               "CKE-ENTR-001",
			Name:              "Dark Chocolate Entremet",
			Slug:              "dark-chocolate-entremet",
			Description:       "Layers of chocolate sponge, praline crunch and 70% dark chocolate mousse under a mirror glaze. Customizable message plaque available.",
			ShortDesc:         "70% dark chocolate mousse cake",
			Price:             420000,
			ComparePrice:      480000,
			CategoryID:        cakes.ID,
			IsAvailable:       true,
			IsFeatured:        true,
			Stock:             12,
			LowStockThreshold: 3,
			Ingredients:       "Dark chocolate, cream, eggs, hazelnut praline, wheat flour, sugar",
			Allergens:         "Gluten, dairy, eggs, tree nuts",
			ShelfLifeHours:    48,
			Tags:              "cake,entremet,chocolate,celebration",
			Sizes: []product.ProductSize{
				{Name: "16cm", PriceDelta: 0, SortOrder: 1, IsActive: true},
				{Name: "20cm", PriceDelta: 180000, SortOrder: 2, IsActive: true},
				{Name: "24cm", PriceDelta: 360000, SortOrder: 3, IsActive: true},
			},
		},
	}

	for _, prod := range products {
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create product %s: %v", prod.SKU, err)
		} else {
			log.Printf("✅ Created product: %s", prod.Name)
		}
	}

	return nil
}

// seedVouchers creates a welcome voucher
func (m *Migration) seedVouchers() error {
	log.Println("🎟️ Seeding vouchers...")

	var existing voucher.Voucher
	result := m.db.Where("code = ?", "WELCOME10").First(&existing)
	if result.Error == nil {
		log.Println("⏭️ Welcome voucher already exists")
		return nil
	}

	now := time.Now().UTC()
	welcome := voucher.Voucher{
		Code:          "WELCOME10",
		Description:   "10% off your first order",
		DiscountType:  voucher.DiscountTypePercent,
		DiscountValue: 10,
		MaxDiscount:   100000,
		MinOrderValue: 200000,
		StartsAt:      now,
		ExpiresAt:     now.AddDate(1, 0, 0),
		UsageLimit:    0,
		IsActive:      true,
	}

	if err := m.db.Create(&welcome).Error; err != nil {
		return fmt.Errorf("failed to create welcome voucher: %w", err)
	}

	log.Println("✅ Created voucher: WELCOME10")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"wishlist_items",
		"flash_sales",
		"loyalty_transactions",
		"loyalty_accounts",
		"vouchers",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"product_sizes",
		"product_images",
		"products",
		"categories",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs record counts for every public table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
