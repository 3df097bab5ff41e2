// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/interfaces/http/handlers"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	orderHandler := handlers.NewOrderHandler(db, cfg)
	voucherHandler := handlers.NewVoucherHandler(db, cfg)
	loyaltyHandler := handlers.NewLoyaltyHandler(db, cfg)
	flashSaleHandler := handlers.NewFlashSaleHandler(db, redisClient, cfg)
	wishlistHandler := handlers.NewWishlistHandler(db, redisClient, cfg)
	profileHandler := handlers.NewUserProfileHandler(db, cfg)
	addressHandler := handlers.NewUserAddressHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
	}
	api.GET("/categories", productHandler.ListCategories)

	vouchers := api.Group("/vouchers")
	{
		vouchers.GET("/available", voucherHandler.ListAvailable)
		vouchers.POST("/validate", voucherHandler.Check)
	}

	api.GET("/flash-sales", flashSaleHandler.ListActive)

	// Guest cart routes (session cookie based)
	guestCart := api.Group("/cart/guest")
	{
		guestCart.GET("", cartHandler.GetGuestCart)
		guestCart.POST("/items", cartHandler.AddGuestItem)
		guestCart.DELETE("", cartHandler.ClearGuestCart)
	}

	// Authenticated routes
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg))
	{
		cart := authenticated.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/merge", cartHandler.MergeGuestCart)
		}

		orders := authenticated.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.ListMine)
			orders.GET("/:id", orderHandler.Get)
			orders.GET("/:id/invoice", invoiceHandler.Download)
		}

		flashSales := authenticated.Group("/flash-sales")
		{
			flashSales.POST("/:id/reserve", flashSaleHandler.Reserve)
			flashSales.DELETE("/:id/reserve", flashSaleHandler.Release)
			flashSales.POST("/:id/confirm", flashSaleHandler.Confirm)
		}

		loyalty := authenticated.Group("/loyalty")
		{
			loyalty.GET("", loyaltyHandler.GetAccount)
			loyalty.GET("/history", loyaltyHandler.History)
		}

		wishlist := authenticated.Group("/wishlist")
		{
			wishlist.GET("", wishlistHandler.Get)
			wishlist.POST("", wishlistHandler.Add)
			wishlist.DELETE("", wishlistHandler.Clear)
			wishlist.DELETE("/:product_id", wishlistHandler.Remove)
			wishlist.POST("/:product_id/move-to-cart", wishlistHandler.MoveToCart)
		}

		me := authenticated.Group("/users/me")
		{
			me.GET("", profileHandler.GetProfile)
			me.PUT("", profileHandler.UpdateProfile)
			me.PUT("/password", profileHandler.ChangePassword)
			me.DELETE("", profileHandler.Deactivate)

			me.GET("/addresses", addressHandler.List)
			me.POST("/addresses", addressHandler.Create)
			me.PUT("/addresses/:id", addressHandler.Update)
			me.DELETE("/addresses/:id", addressHandler.Delete)
			me.PUT("/addresses/:id/default", addressHandler.SetDefault)
		}
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.POST("", productHandler.Create)
			adminProducts.PUT("/:id", productHandler.Update)
			adminProducts.DELETE("/:id", productHandler.Delete)
			adminProducts.PATCH("/:id/stock", productHandler.AdjustStock)
		}

		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.ListAll)
			adminOrders.PUT("/:id/status", orderHandler.UpdateStatus)
		}

		adminVouchers := admin.Group("/vouchers")
		{
			adminVouchers.GET("", voucherHandler.List)
			adminVouchers.POST("", voucherHandler.Create)
			adminVouchers.DELETE("/:id", voucherHandler.Deactivate)
		}

		admin.POST("/flash-sales", flashSaleHandler.Create)

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", userAdminHandler.List)
			adminUsers.GET("/:id", userAdminHandler.Get)
			adminUsers.PUT("/:id/status", userAdminHandler.UpdateStatus)
		}

		adminAnalytics := admin.Group("/analytics")
		{
			adminAnalytics.GET("/dashboard", analyticsHandler.Dashboard)
			adminAnalytics.GET("/revenue", analyticsHandler.DailyRevenue)
			adminAnalytics.GET("/top-products", analyticsHandler.TopProducts)
			adminAnalytics.GET("/low-stock", analyticsHandler.LowStock)
		}
	}
}
