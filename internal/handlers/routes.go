package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/middleware"
)

// Routes groups the handlers served under /api.
type Routes struct {
	Auth       *AuthHandler
	Budgets    *BudgetHandler
	Expenses   *ExpenseHandler
	Categories *CategoryHandler
	Analytics  *AnalyticsHandler
	Audit      *AuditHandler
	Live       *LiveHandler
}

// Register mounts every route on api. Everything except the auth endpoints
// requires the token cookie.
func (r Routes) Register(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", r.Auth.Register)
		auth.POST("/login", r.Auth.Login)
		auth.POST("/logout", r.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", r.Auth.GetProfile)

		categories := protected.Group("/categories")
		{
			categories.GET("", r.Categories.GetCategories)
			categories.POST("", r.Categories.CreateCategory)
		}

		budgets := protected.Group("/budgets")
		{
			budgets.GET("", r.Budgets.GetBudgets)
			budgets.POST("", r.Budgets.CreateBudget)
			budgets.GET("/active", r.Budgets.GetActiveBudget)
			budgets.GET("/:id", r.Budgets.GetBudget)
			budgets.PUT("/:id", r.Budgets.ReplaceBudget)
			budgets.PATCH("/:id", r.Budgets.PatchBudget)
			budgets.DELETE("/:id", r.Budgets.DeleteBudget)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.GET("", r.Expenses.GetExpenses)
			expenses.POST("", r.Expenses.CreateExpense)
			expenses.GET("/export", r.Expenses.ExportExpenses)
			expenses.DELETE("/:id", r.Expenses.DeleteExpense)
		}

		analytics := protected.Group("/analytics")
		{
			analytics.GET("", r.Analytics.GetAnalytics)
			analytics.GET("/alerts", r.Analytics.GetBudgetAlerts)
		}

		protected.GET("/audit-logs", r.Audit.GetAuditLogs)

		if r.Live != nil {
			protected.GET("/ws", r.Live.Stream)
		}
	}
}

// NewRouter builds the engine with the shared middleware stack, the health
// check and every /api route. Credentials are allowed so browsers from the
// given origins can send the token cookie.
func NewRouter(allowedOrigins []string, routes Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		respondWithError(c, apperrors.ErrNotFound)
	})

	routes.Register(router.Group("/api"))
	return router
}
