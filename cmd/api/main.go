package main

import (
	"context"
	"log"
	"time"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/notify"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/transcribe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// purgeInterval controls how often expired refresh tokens are garbage
// collected. Purging is an optimization: expired tokens are already invalid.
const purgeInterval = time.Hour

// @title           Order Automation API
// @version         1.0
// @description     Multi-tenant order management with speech-based order extraction.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket notification hub
	hub := notify.NewHub()
	go hub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	txManager := repository.NewTransactionManager(db)

	hasher := auth.NewBcryptHasher()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, tokenRepo)
	resolver := auth.NewSessionResolver(issuer, userRepo)

	authService := service.NewAuthService(userRepo, tokenRepo, orgRepo, hasher, issuer, txManager)
	orgService := service.NewOrganizationService(orgRepo)
	categoryService := service.NewCategoryService(categoryRepo, orgRepo)
	productService := service.NewProductService(productRepo, categoryRepo, orgRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, orgRepo, txManager)
	promptService := service.NewPromptService(promptRepo, orgRepo)

	extractor := transcribe.NewClient(cfg.SpeechAPIURL, cfg.SpeechAPIKey)
	transcribeService := service.NewTranscribeService(productRepo, promptRepo, extractor, hub)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, resolver)
	orgHandler := handler.NewOrganizationHandler(orgService, resolver)
	categoryHandler := handler.NewCategoryHandler(categoryService, resolver)
	productHandler := handler.NewProductHandler(productService, resolver)
	orderHandler := handler.NewOrderHandler(orderService, resolver)
	promptHandler := handler.NewPromptHandler(promptService, resolver)
	transcribeHandler := handler.NewTranscribeHandler(transcribeService, resolver)

	// Background cleanup of expired refresh tokens
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if n, err := tokenRepo.PurgeExpired(ctx); err != nil {
				log.Println("Failed to purge expired refresh tokens:", err)
			} else if n > 0 {
				log.Printf("Purged %d expired refresh tokens", n)
			}
			cancel()
		}
	}()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the order-notification feed
	router.GET("/ws", func(c *gin.Context) {
		notify.ServeWs(hub, c, resolver)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	orgHandler.RegisterRoutes(router.Group(""))
	categoryHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	promptHandler.RegisterRoutes(router.Group(""))
	transcribeHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
