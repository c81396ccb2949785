package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/controllers"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/services"
)

func main() {
	log.Println("Starting FreshWash Laundry API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusHistoryEntry{},
		&models.Feedback{},
		&models.Contact{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Wire the email notification pipeline
	dispatcher := services.NewDispatcher(services.NewMailerFromConfig(cfg), cfg)
	services.SetDispatcher(dispatcher)
	defer dispatcher.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware(cfg))

	registerRoutes(router)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	return cors.New(corsConfig)
}

func registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/me", middleware.Protect(), controllers.GetProfile)
			auth.PUT("/profile", middleware.Protect(), controllers.UpdateProfile)
		}

		svc := api.Group("/services")
		{
			svc.GET("", controllers.GetServices)
			svc.GET("/categories", controllers.GetServiceCategories)
			svc.GET("/category/:category", controllers.GetServicesByCategory)
			svc.GET("/:id", controllers.GetServiceByID)
			svc.POST("", middleware.Protect(), middleware.Admin(), controllers.CreateService)
			svc.PUT("/:id", middleware.Protect(), middleware.Admin(), controllers.UpdateService)
			svc.DELETE("/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteService)
		}

		orders := api.Group("/orders")
		orders.Use(middleware.Protect())
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("/myorders", controllers.GetMyOrders)
			orders.GET("", middleware.Admin(), controllers.GetOrders)
			orders.GET("/:id", controllers.GetOrderByID)
			orders.PUT("/:id/pay", controllers.PayOrder)
			orders.PUT("/:id/status", middleware.Admin(), controllers.UpdateOrderStatus)
			orders.PUT("/:id/cancel", controllers.CancelOrder)
		}

		payments := api.Group("/payments")
		payments.Use(middleware.Protect())
		{
			payments.POST("/create-payment-intent", controllers.CreatePaymentIntent)
			payments.POST("/confirm-payment", controllers.ConfirmPayment)
			payments.POST("/demo-payment", controllers.ProcessDemoPayment)
			payments.POST("/refund", middleware.Admin(), controllers.RefundPayment)
			payments.GET("/history", controllers.GetPaymentHistory)
		}
		api.POST("/payments/webhook", controllers.PaymentWebhook)

		feedback := api.Group("/feedback")
		{
			feedback.GET("", middleware.OptionalAuth(), controllers.GetFeedback)
			feedback.GET("/service/:serviceId", controllers.GetFeedbackByService)
			feedback.POST("", middleware.Protect(), controllers.CreateFeedback)
			feedback.GET("/my", middleware.Protect(), controllers.GetMyFeedback)
			feedback.PUT("/:id", middleware.Protect(), controllers.UpdateFeedback)
			feedback.DELETE("/:id", middleware.Protect(), controllers.DeleteFeedback)
			feedback.PUT("/:id/respond", middleware.Protect(), middleware.Admin(), controllers.RespondToFeedback)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", middleware.OptionalAuth(), controllers.CreateContact)
			contact.GET("", middleware.Protect(), middleware.Admin(), controllers.GetContacts)
			contact.GET("/:id", middleware.Protect(), middleware.Admin(), controllers.GetContactByID)
			contact.PUT("/:id", middleware.Protect(), middleware.Admin(), controllers.UpdateContact)
			contact.PUT("/:id/respond", middleware.Protect(), middleware.Admin(), controllers.RespondToContact)
			contact.DELETE("/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteContact)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Protect(), middleware.Admin())
		{
			admin.GET("/stats", controllers.GetDashboardStats)
			admin.GET("/revenue", controllers.GetRevenue)
			admin.GET("/users", controllers.GetAllUsers)
			admin.GET("/users/:id", controllers.GetUserByID)
			admin.PUT("/users/:id", controllers.UpdateUser)
			admin.DELETE("/users/:id", controllers.DeleteUser)
		}
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "FreshWash Laundry API is running",
	})
}
