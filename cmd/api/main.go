package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dealer-portal-api/config"
	"dealer-portal-api/middleware"
	"dealer-portal-api/models"
	"dealer-portal-api/routes"
	"dealer-portal-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Dealer{},
		&models.PCCSubmission{},
		&models.PCCStatusHistory{},
		&models.PCCReferenceSequence{},
		&models.FeatureFlag{},
		&models.SystemConfig{},
		&models.AuditLog{},
		&models.AccessRequest{},
		&models.OTPChallenge{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Construct services once; everything downstream gets them by injection
	audit := services.NewAuditService(config.DB)
	flags, err := services.NewFeatureFlagService(config.DB, audit)
	if err != nil {
		log.Fatal("Failed to initialize feature flags:", err)
	}
	pcc := services.NewPCCService(config.DB, audit, services.PCCServiceOptions{
		LockTerminalStatuses: os.Getenv("PCC_LOCK_TERMINAL_STATUSES") == "true",
	})
	auth := services.NewAuthService(config.DB, audit)
	requests := services.NewAccessRequestService(config.DB, audit)

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router, config.DB, routes.Services{
		Auth:     auth,
		PCC:      pcc,
		Flags:    flags,
		Audit:    audit,
		Requests: requests,
	})

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
