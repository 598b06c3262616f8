// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/config"
	"github.com/Sanjanack/FarmConnect/internal/handlers"
	"github.com/Sanjanack/FarmConnect/internal/middleware"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg)
	cropService := services.NewCropService(db)
	orderService := services.NewOrderService(db)
	cartService := services.NewCartService(db, orderService)
	paymentService := services.NewPaymentService(db, cfg)
	profileService := services.NewProfileService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	cropHandler := handlers.NewCropHandler(cropService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(cartService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Crop routes: marketplace reads are public, writes are farmer-only
		crops := v1.Group("/crops")
		{
			crops.GET("", middleware.OptionalAuth(), cropHandler.SearchCrops)

			farmerCrops := crops.Group("")
			farmerCrops.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleFarmer))
			{
				farmerCrops.POST("", cropHandler.CreateCrop)
				farmerCrops.GET("/mine", cropHandler.GetMyCrops)
				farmerCrops.PUT("/:id", cropHandler.UpdateCrop)
				farmerCrops.DELETE("/:id", cropHandler.DeleteCrop)
			}

			crops.GET("/:id", middleware.OptionalAuth(), cropHandler.GetCrop)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.RoleRequired(models.UserRoleBuyer), orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/confirm", orderHandler.ConfirmOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/complete", middleware.RoleRequired(models.UserRoleBuyer), orderHandler.CompleteOrder)
			orders.GET("/:id/supply-chain", orderHandler.GetSupplyChain)
			orders.POST("/:id/supply-chain", middleware.RoleRequired(models.UserRoleFarmer), orderHandler.AdvanceSupplyChain)
		}

		// Cart routes (buyer only, the cart is the set of pending orders)
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleBuyer))
		{
			cart.GET("", cartHandler.GetCart)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.GET("", paymentHandler.GetPaymentHistory)
		}

		// Profile routes
		profile := v1.Group("/profile")
		profile.Use(middleware.AuthRequired())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
			profile.GET("/dashboard", profileHandler.GetDashboard)
		}
	}

	return r
}
