package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"finbook/internal/api"        // Custom package for API handlers
	"finbook/internal/config"     // Custom package for configuration
	"finbook/internal/ledger"     // Ledger core
	"finbook/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the ledger core: an engine over the gorm-backed store
	engine := ledger.NewEngine(ledger.NewStore(db))

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(db))            // Registration endpoint
	r.GET("/user", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Authenticated routes (protected by JWT, Redis client injected)
	authGroup := r.Group("/")
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})

	// Wallet routes
	authGroup.POST("/wallets", api.CreateWalletHandler(db))               // Create wallet endpoint
	authGroup.GET("/wallets", api.ListWalletsHandler(db, redisClient))    // List wallets endpoint
	authGroup.GET("/wallets/:id", api.GetWalletHandler(db))               // Get wallet endpoint
	authGroup.PUT("/wallets/:id", api.UpdateWalletHandler(db))            // Administrative wallet edit endpoint
	authGroup.DELETE("/wallets/:id", api.ArchiveWalletHandler(engine))    // Archive wallet endpoint (ledger-gated)

	// Category routes
	authGroup.POST("/categories", api.CreateCategoryHandler(db))       // Create category endpoint
	authGroup.GET("/categories", api.ListCategoriesHandler(db))        // List categories endpoint
	authGroup.PUT("/categories/:id", api.UpdateCategoryHandler(db))    // Update category endpoint
	authGroup.DELETE("/categories/:id", api.DeleteCategoryHandler(db)) // Delete category endpoint

	// Transaction routes (ledger core)
	authGroup.POST("/transactions", api.CreateTransactionHandler(engine))          // Post transaction endpoint
	authGroup.GET("/transactions", api.ListTransactionsHandler(db, redisClient))   // List transactions endpoint
	authGroup.DELETE("/transactions/:id", api.DeleteTransactionHandler(db))        // Soft-delete transaction endpoint

	// Goal routes
	authGroup.POST("/goals", api.CreateGoalHandler(db, engine))             // Create goal endpoint
	authGroup.GET("/goals", api.ListGoalsHandler(db))                       // List goals endpoint
	authGroup.PUT("/goals/:id", api.UpdateGoalHandler(db, engine))          // Update goal endpoint
	authGroup.DELETE("/goals/:id", api.DeleteGoalHandler(db, engine))       // Delete goal endpoint
	authGroup.POST("/goals/:id/milestones", api.AddMilestoneHandler(db, engine)) // Add milestone endpoint

	// Loan routes
	authGroup.POST("/loans", api.CreateLoanHandler(db))               // Create loan endpoint
	authGroup.GET("/loans", api.ListLoansHandler(db))                 // List loans endpoint
	authGroup.POST("/loans/:id/payments", api.AddLoanPaymentHandler(db)) // Record loan payment endpoint
	authGroup.DELETE("/loans/:id", api.DeleteLoanHandler(db))         // Delete loan endpoint

	// Template routes
	authGroup.POST("/templates", api.CreateTemplateHandler(db))              // Create template endpoint
	authGroup.GET("/templates", api.ListTemplatesHandler(db))                // List templates endpoint
	authGroup.DELETE("/templates/:id", api.DeleteTemplateHandler(db))        // Delete template endpoint
	authGroup.POST("/templates/:id/apply", api.ApplyTemplateHandler(db, engine)) // Apply template endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))                  // List users endpoint
	adminGroup.GET("/transactions", api.ListAllTransactionsHandler(db, redisClient)) // List transactions endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
