package main

import (
	"fmt"
	"net/http"
	"os"

	"fluxo/internal/config"
	"fluxo/internal/database"
	"fluxo/internal/handlers"
	"fluxo/internal/logger"
	"fluxo/internal/middleware"
	"fluxo/internal/services"
	"fluxo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fluxo/internal/docs" // Import swagger docs
)

// @title           Fluxo API
// @version         1.0
// @description     Fluxo is a personal finance forecasting engine: it expands recurring, installment, and budget rules into projected cash flows, reconciles them against real transactions, and reports per-period balances over custom accounting cycles.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	fxService := services.NewFXService(appConfig.FXBaseURL, appConfig.FXTimeout)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, fxService, appConfig.LedgerCurrency)
	cycleService := services.NewCycleService(db)
	ruleService := services.NewRuleService(db)
	forecastService := services.NewForecastService(db, cycleService)
	reportService := services.NewReportService(db)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, ruleService, auditService)
	ruleHandler := handlers.NewRuleHandler(ruleService, auditService)
	forecastHandler := handlers.NewForecastHandler(forecastService, reportService, auditService, appConfig.HorizonMonths)
	cycleHandler := handlers.NewCycleHandler(cycleService, auditService)

	// Register custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Account routes
	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("/bulk-category", transactionHandler.BulkAssignCategory)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/plan", transactionHandler.ApplyPlan)

	// Forecast rule routes
	rules := v1.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetRules)
	rules.GET("/:id", ruleHandler.GetRule)
	rules.DELETE("/:id", ruleHandler.DeactivateRule)

	// Forecast routes
	forecast := v1.Group("/forecast")
	forecast.POST("/generate", forecastHandler.GenerateInstances)
	forecast.GET("/report", forecastHandler.GetYearReport)
	forecast.GET("/summary", forecastHandler.GetCycleSummary)
	forecast.POST("/instances/:id/link", forecastHandler.LinkTransaction)
	forecast.PUT("/instances/:id/amount", forecastHandler.SetInstanceAmount)
	forecast.PUT("/instances/:id/status", forecastHandler.SetInstanceStatus)

	// Cycle routes
	cycles := v1.Group("/cycles")
	cycles.PUT("", cycleHandler.UpsertCycle)
	cycles.GET("", cycleHandler.GetCycles)

	log.Infof("Starting Fluxo backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
