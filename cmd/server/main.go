package main

import (
	"context"                            // context package is needed for Redis operations
	"log"                                // log package is needed for logging
	"savings_system/internal/api"        // Custom package for API handlers
	"savings_system/internal/config"     // Custom package for configuration
	"savings_system/internal/middleware" // Custom package for middleware
	"savings_system/internal/seed"       // Custom package for admin bootstrap
	"savings_system/internal/service"    // Custom package for business services

	"github.com/gin-contrib/cors"  // CORS middleware
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

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client for the rate limiters
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

	// Ensure the seed admin user and its verified device exist
	if err := seed.AdminUser(db, cfg); err != nil {
		logrus.Fatalf("failed to seed admin user: %v", err)
	}

	// Stateless services over the shared database handle
	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiresIn, cfg.IsProd)
	ledgerService := service.NewLedgerService(db)
	adminService := service.NewAdminService(db)

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

	// CORS for the configured frontend origins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,                              // Allowed origins from env
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},   // Methods the API uses
		AllowHeaders:     []string{"Authorization", "Content-Type"},    // Bearer tokens and JSON bodies
		AllowCredentials: true,                                         // Cookies and auth headers
	}))

	// Health check
	r.GET("/health", api.HealthHandler())

	// Auth routes, tightly rate limited
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.RateLimitMiddleware(redisClient, "auth", middleware.AuthLimitMax, middleware.RateWindow))
	authGroup.POST("/register", api.RegisterHandler(authService))                          // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(authService))                                // Login endpoint
	authGroup.GET("/verify-token", api.VerifyTokenHandler(authService))                    // Token verification endpoint
	authGroup.POST("/request-password-reset", api.RequestPasswordResetHandler(authService)) // Password reset endpoint

	// Account routes (protected by JWT, loosely rate limited)
	accountGroup := r.Group("/api/account")
	accountGroup.Use(
		middleware.RateLimitMiddleware(redisClient, "api", middleware.APILimitMax, middleware.RateWindow),
		middleware.JWTAuthMiddleware(db, cfg.JWTSecret),
	)
	accountGroup.GET("/balance", api.BalanceHandler(ledgerService))           // Balance endpoint
	accountGroup.POST("/deposit", api.DepositHandler(ledgerService))          // Deposit endpoint
	accountGroup.POST("/withdraw", api.WithdrawHandler(ledgerService))        // Withdraw endpoint
	accountGroup.GET("/transactions", api.TransactionsHandler(ledgerService)) // Transaction history endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(
		middleware.RateLimitMiddleware(redisClient, "api", middleware.APILimitMax, middleware.RateWindow),
		middleware.JWTAuthMiddleware(db, cfg.JWTSecret),
		middleware.AdminOnlyMiddleware(db),
	)
	adminGroup.GET("/users", api.AdminListUsersHandler(adminService))                      // List users endpoint
	adminGroup.GET("/users/:id", api.AdminGetUserHandler(adminService))                    // Single user endpoint
	adminGroup.GET("/users/:id/details", api.AdminUserDetailsHandler(adminService))        // User details endpoint
	adminGroup.PATCH("/users/:id/access", api.AdminSetAccessHandler(adminService))         // Toggle access endpoint
	adminGroup.DELETE("/users/:id", api.AdminDeleteUserHandler(adminService))              // Cascading delete endpoint
	adminGroup.POST("/users/:id/devices", api.AdminAssignDeviceHandler(adminService))      // Assign device endpoint
	adminGroup.GET("/devices", api.AdminListDevicesHandler(adminService))                  // List devices endpoint
	adminGroup.POST("/devices/:deviceId/verify", api.AdminVerifyDeviceHandler(adminService)) // Verify device endpoint
	adminGroup.DELETE("/devices/:deviceId", api.AdminDeleteDeviceHandler(adminService))    // Delete device endpoint
	adminGroup.GET("/accounts", api.AdminListAccountsHandler(adminService))                // List accounts endpoint
	adminGroup.GET("/transactions", api.AdminListTransactionsHandler(adminService))        // List transactions endpoint
	adminGroup.GET("/stats", api.AdminStatsHandler(adminService))                          // Dashboard stats endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
