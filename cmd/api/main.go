package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetly/internal/config"
	"budgetly/internal/database"
	_ "budgetly/internal/docs" // Import swagger docs
	"budgetly/internal/events"
	"budgetly/internal/handlers"
	"budgetly/internal/logger"
	"budgetly/internal/services"
	"budgetly/internal/validator"
)

// @title           Budgetly API
// @version         1.0
// @description     Budgetly tracks expenses against monthly budgets and reports how spending compares with each allocation.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @description Session JWT set by /auth/login and /auth/register.

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

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig), appConfig.IsProduction())
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if err := database.SeedDefaultCategories(db); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	validator.Register()

	// Event sinks: live sessions always, the broker when configured
	hub := events.NewHub(appConfig.CORSAllowedOrigins)
	defer hub.Close()
	publisher := events.Multi{hub}

	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = append(publisher, amqpPublisher)
		log.Infow("Publishing events to broker", "exchange", appConfig.AMQPExchange)
	}

	// Initialize services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, publisher)
	expenseService := services.NewExpenseService(db, publisher)
	analyticsService := services.NewAnalyticsService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	routes := handlers.Routes{
		Auth:       handlers.NewAuthHandler(userService, auditService),
		Budgets:    handlers.NewBudgetHandler(budgetService, auditService),
		Expenses:   handlers.NewExpenseHandler(expenseService, auditService),
		Categories: handlers.NewCategoryHandler(categoryService, auditService),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService),
		Audit:      handlers.NewAuditHandler(auditService),
		Live:       handlers.NewLiveHandler(hub),
	}

	router := handlers.NewRouter(appConfig.CORSAllowedOrigins, routes)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// No write timeout: /api/ws sessions are long-lived.
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Budgetly backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
