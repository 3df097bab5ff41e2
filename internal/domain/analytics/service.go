// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
)

// Service computes back-office dashboard figures from order, product and
// user data. Cancelled orders are excluded from every revenue number.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Revenue, VND
	TotalRevenue     int64 `json:"total_revenue"`
	RevenueToday     int64 `json:"revenue_today"`
	RevenueThisWeek  int64 `json:"revenue_this_week"`
	RevenueThisMonth int64 `json:"revenue_this_month"`

	// Orders
	TotalOrders   int64 `json:"total_orders"`
	OrdersToday   int64 `json:"orders_today"`
	PendingOrders int64 `json:"pending_orders"`
	AvgOrderValue int64 `json:"avg_order_value"`

	// Users
	TotalUsers    int64 `json:"total_users"`
	NewUsersToday int64 `json:"new_users_today"`

	// Products
	TotalProducts      int64 `json:"total_products"`
	AvailableProducts  int64 `json:"available_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`
}

// TimeSeriesData is one point of a revenue-over-time series
type TimeSeriesData struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// ProductSalesData represents one product's sales figures
type ProductSalesData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

// LowStockData represents a product running low
type LowStockData struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// GetDashboardStats computes the dashboard headline numbers
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	revenue := func(since *time.Time) (int64, error) {
		var total int64
		query := s.db.Table("orders").
			Where("status != ? AND deleted_at IS NULL", "cancelled")
		if since != nil {
			query = query.Where("created_at >= ?", *since)
		}
		err := query.Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
		return total, err
	}

	var err error
	if stats.TotalRevenue, err = revenue(nil); err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	if stats.RevenueToday, err = revenue(&today); err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	if stats.RevenueThisWeek, err = revenue(&weekStart); err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	if stats.RevenueThisMonth, err = revenue(&monthStart); err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	orders := s.db.Table("orders").Where("deleted_at IS NULL")
	if err := orders.Session(&gorm.Session{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := orders.Session(&gorm.Session{}).Where("created_at >= ?", today).Count(&stats.OrdersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := orders.Session(&gorm.Session{}).Where("status = ?", "pending").Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var nonCancelled int64
	if err := s.db.Table("orders").
		Where("status != ? AND deleted_at IS NULL", "cancelled").
		Count(&nonCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if nonCancelled > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / nonCancelled
	}

	if err := s.db.Table("users").Where("deleted_at IS NULL").Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Table("users").
		Where("created_at >= ? AND deleted_at IS NULL", today).
		Count(&stats.NewUsersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	products := s.db.Table("products").Where("deleted_at IS NULL")
	if err := products.Session(&gorm.Session{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := products.Session(&gorm.Session{}).Where("is_available = ?", true).Count(&stats.AvailableProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := products.Session(&gorm.Session{}).Where("stock = 0").Count(&stats.OutOfStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := products.Session(&gorm.Session{}).
		Where("stock > 0 AND stock <= low_stock_threshold").
		Count(&stats.LowStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return stats, nil
}

// GetDailyRevenue returns a per-day revenue series for the last N days
func (s *Service) GetDailyRevenue(days int) ([]TimeSeriesData, error) {
	if days < 1 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	type row struct {
		Day     string
		Revenue int64
		Orders  int64
	}
	var rows []row
	err := s.db.Table("orders").
		Select("DATE(created_at) as day, COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as orders").
		Where("status != ? AND created_at >= ? AND deleted_at IS NULL", "cancelled", since).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily revenue: %w", err)
	}

	series := make([]TimeSeriesData, len(rows))
	for i, r := range rows {
		series[i] = TimeSeriesData{Date: r.Day, Revenue: r.Revenue, Orders: r.Orders}
	}
	return series, nil
}

// GetTopProducts returns the best sellers by delivered quantity
func (s *Service) GetTopProducts(limit int) ([]ProductSalesData, error) {
	if limit < 1 {
		limit = 10
	}

	var rows []ProductSalesData
	err := s.db.Table("order_items").
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) as quantity, SUM(order_items.total_price) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status != ? AND orders.deleted_at IS NULL", "cancelled").
		Group("order_items.product_id, order_items.product_name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute top products: %w", err)
	}

	return rows, nil
}

// GetLowStockProducts lists products at or under their low-stock threshold
func (s *Service) GetLowStockProducts() ([]LowStockData, error) {
	var rows []LowStockData
	err := s.db.Table("products").
		Select("id as product_id, name, stock, low_stock_threshold as threshold").
		Where("stock <= low_stock_threshold AND is_available = ? AND deleted_at IS NULL", true).
		Order("stock ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	return rows, nil
}
