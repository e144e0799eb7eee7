package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tracker/internal/cache"
	"tracker/internal/config"
	"tracker/internal/handlers"
	"tracker/internal/middleware"
	"tracker/internal/services"
	"tracker/internal/store"
)

// engines groups the services behind the API.
type engines struct {
	habits    services.HabitServicer
	finance   services.FinanceServicer
	portfolio services.PortfolioServicer
	goals     services.GoalServicer
	settings  services.SettingsServicer
	backup    services.BackupServicer
}

func newEngines(st *store.Store) *engines {
	e := &engines{
		habits:    services.NewHabitService(st),
		finance:   services.NewFinanceService(st),
		portfolio: services.NewPortfolioService(st),
		goals:     services.NewGoalService(st),
		settings:  services.NewSettingsService(st),
	}
	e.backup = services.NewBackupService(st, e.habits, e.finance, e.portfolio, e.goals, e.settings)
	return e
}

func newRouter(cfg *config.Config, e *engines, cacheStore cache.Cache) *gin.Engine {
	habitHandler := handlers.NewHabitHandler(e.habits)
	transactionHandler := handlers.NewTransactionHandler(e.finance, cacheStore)
	stockHandler := handlers.NewStockHandler(e.portfolio, cacheStore)
	goalHandler := handlers.NewGoalHandler(e.goals)
	settingsHandler := handlers.NewSettingsHandler(e.settings)
	backupHandler := handlers.NewBackupHandler(e.backup)
	dashboardHandler := handlers.NewDashboardHandler(e.habits, e.finance, e.portfolio, cacheStore)
	authHandler := handlers.NewAuthHandler(cfg.PasscodeHash, cfg.JWTSecret, cfg.JWTExpirationDur)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/status", authHandler.Status)

	protected := v1.Group("/")
	if cfg.AuthEnabled() {
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}

	habits := protected.Group("/habits")
	habits.Use(middleware.InvalidateCache(cacheStore, cache.GroupDashboard))
	habits.GET("", habitHandler.ListHabits)
	habits.POST("", habitHandler.CreateHabit)
	habits.GET("/month", habitHandler.GetSelectedMonth)
	habits.PUT("/month", habitHandler.SelectMonth)
	habits.GET("/entries", habitHandler.ListEntries)
	habits.GET("/:id", habitHandler.GetHabit)
	habits.PUT("/:id", habitHandler.UpdateHabit)
	habits.DELETE("/:id", habitHandler.DeleteHabit)
	habits.POST("/:id/toggle", habitHandler.ToggleEntry)
	habits.PUT("/:id/value", habitHandler.SetValue)
	habits.GET("/:id/progress", habitHandler.GetProgress)

	transactions := protected.Group("/transactions")
	transactions.Use(middleware.InvalidateCache(cacheStore, cache.GroupFinance, cache.GroupDashboard))
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/category-totals", transactionHandler.GetCategoryTotals)
	transactions.GET("/categories", transactionHandler.ListCategories)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	stocks := protected.Group("/stocks")
	stocks.Use(middleware.InvalidateCache(cacheStore, cache.GroupPortfolio, cache.GroupDashboard))
	stocks.GET("", stockHandler.ListStocks)
	stocks.POST("", stockHandler.CreateStock)
	stocks.GET("/summary", stockHandler.GetSummary)
	stocks.GET("/:id", stockHandler.GetStock)
	stocks.PUT("/:id", stockHandler.UpdateStock)
	stocks.DELETE("/:id", stockHandler.DeleteStock)
	stocks.POST("/:id/average", stockHandler.AverageIn)
	stocks.POST("/:id/sell", stockHandler.Sell)
	stocks.PUT("/:id/price", stockHandler.UpdatePrice)

	goals := protected.Group("/goals")
	goals.GET("", goalHandler.ListGoals)
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.PUT("/:id/progress", goalHandler.UpdateProgress)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/progress", dashboardHandler.GetProgress)
	dashboard.GET("/weekly", dashboardHandler.GetWeekly)
	dashboard.GET("/daily", dashboardHandler.GetDaily)
	dashboard.GET("/series", dashboardHandler.GetSeries)
	dashboard.GET("/monthly", dashboardHandler.GetMonthly)
	dashboard.GET("/top", dashboardHandler.GetTopHabits)
	dashboard.GET("/overview", dashboardHandler.GetOverview)

	backup := protected.Group("/backup")
	backup.GET("/export", backupHandler.Export)
	backup.POST("/import", middleware.InvalidateCache(cacheStore, cache.AllGroups...), backupHandler.Import)

	return router
}
