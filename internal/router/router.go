// Package router assembles the HTTP API: middleware, handlers and routes.
package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "kopilka/internal/docs" // swagger docs
	"kopilka/internal/events"
	"kopilka/internal/handlers"
	"kopilka/internal/middleware"
	"kopilka/internal/ratelimit"
	"kopilka/internal/services"
	"kopilka/internal/validator"
)

// Options carries the dependencies of the HTTP API.
type Options struct {
	DB             *gorm.DB
	AuthLimiter    ratelimit.Limiter
	Publisher      events.Publisher
	AllowedOrigins []string
}

// New builds the gin engine serving the API.
func New(opts Options) *gin.Engine {
	validator.Register()

	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.AuthLimiter == nil {
		opts.AuthLimiter = ratelimit.NewMemory(20)
	}

	db := opts.DB
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	goalService := services.NewGoalService(db)
	savingsService := services.NewSavingsService(db)
	dashboardService := services.NewDashboardService(budgetService, goalService, savingsService)

	authHandler := handlers.NewAuthHandler(userService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService, opts.Publisher)
	savingsHandler := handlers.NewSavingsHandler(savingsService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(opts.AuthLimiter, "auth"))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudget)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.POST("/:id/categories", categoryHandler.AddCategory)

	categories := protected.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.Contribute)
	goals.GET("/:id/notifications", goalHandler.GetGoalNotifications)

	savings := protected.Group("/savings")
	savings.GET("", savingsHandler.GetSavings)
	savings.POST("", savingsHandler.CreateSavings)
	savings.PATCH("/:id", savingsHandler.UpdateSavings)
	savings.GET("/:id/transactions", savingsHandler.GetSavingsTransactions)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
