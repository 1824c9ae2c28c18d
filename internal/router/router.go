package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/controller"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	productController      *controller.ProductController
	categoryController     *controller.CategoryController
	cartController         *controller.CartController
	orderController        *controller.OrderController
	notificationController *controller.NotificationController
	cloverController       *controller.CloverController
	uploadController       *controller.UploadController
	sheetController        *controller.SheetController
	wsController           *controller.WSController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	notificationController *controller.NotificationController,
	cloverController *controller.CloverController,
	uploadController *controller.UploadController,
	sheetController *controller.SheetController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		productController:      productController,
		categoryController:     categoryController,
		cartController:         cartController,
		orderController:        orderController,
		notificationController: notificationController,
		cloverController:       cloverController,
		uploadController:       uploadController,
		sheetController:        sheetController,
		wsController:           wsController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "CloudPuff API is running",
		})
	})

	// Live catalog and notification stream. Guests connect too; the
	// token (cookie or ?token=) only adds per-user delivery.
	router.GET("/ws", r.authMiddleware.OptionalAuthenticate(), r.wsController.Connect)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/feed", r.productController.GetProductFeed)
			products.GET("/:id", r.productController.GetProductByID)

			products.POST("/:id/waitlist",
				r.authMiddleware.Authenticate(),
				r.notificationController.JoinWaitlist,
			)
			products.DELETE("/:id/waitlist",
				r.authMiddleware.Authenticate(),
				r.notificationController.LeaveWaitlist,
			)

			admin := products.Group("")
			admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
			{
				admin.POST("", r.productController.CreateProduct)
				admin.PUT("/:id", r.productController.UpdateProduct)
				admin.DELETE("/:id", r.productController.DeleteProduct)
				admin.POST("/delete", r.productController.DeleteProducts)
				admin.POST("/import", r.sheetController.ImportProducts)
				admin.GET("/export", r.sheetController.ExportProducts)
			}
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.categoryController.GetCategories)
			categories.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.categoryController.CreateCategory,
			)
			categories.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.categoryController.DeleteCategory,
			)
			categories.POST("/delete",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.categoryController.DeleteCategories,
			)
		}

		cart := api.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := api.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("/place-cod", r.orderController.PlaceOrderCOD)
			orders.POST("/place-clover", r.orderController.PlaceOrderClover)
			orders.POST("/checkout", r.orderController.CreateCheckout)
			orders.POST("/verify-clover", r.orderController.VerifyCheckout)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)

			orders.GET("/all",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.GetAllOrders,
			)
			orders.PUT("/:id/status",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.UpdateOrderStatus,
			)
			orders.PUT("/:id/items/:itemId/status",
				r.authMiddleware.RequireRole("admin"),
				r.orderController.UpdateOrderItemStatus,
			)
		}

		notifications := api.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.GetNotifications)
			notifications.GET("/unread-count", r.notificationController.GetUnreadCount)
			notifications.PUT("/:id/read", r.notificationController.MarkRead)
			notifications.PUT("/read-all", r.notificationController.MarkAllRead)
			notifications.DELETE("/:id", r.notificationController.DeleteNotification)
		}

		clover := api.Group("/clover")
		clover.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			clover.GET("/status", r.cloverController.GetStatus)
			clover.POST("/sync/products", r.cloverController.SyncProducts)
			clover.POST("/sync/categories", r.cloverController.SyncCategories)
			clover.POST("/sync/all", r.cloverController.SyncAll)
		}

		upload := api.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			upload.POST("/image", r.uploadController.UploadImage)
			upload.POST("/images", r.uploadController.UploadImages)
			upload.DELETE("/image", r.uploadController.DeleteImage)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
