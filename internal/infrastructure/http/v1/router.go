// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/core/idempotency"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/domain/reports"
	"stockwise/internal/infrastructure/http/v1/handlers"
	"stockwise/internal/infrastructure/http/v1/middleware"
	"stockwise/internal/infrastructure/metrics"
	"stockwise/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	Guard        *guard.Service
	Availability *availability.Service
	Locations    *locations.Registry
	Products     product.Repository
	Stock        stock.Repository
	Reports      *reports.Service

	// Idempotency enables Idempotency-Key handling on writes when set
	Idempotency idempotency.Store

	// Metrics enables request metrics and GET /metrics when set
	Metrics *metrics.Metrics

	// Store is pinged by GET /health; nil for the in-memory driver
	Store       handlers.Pinger
	StoreDriver string
	Version     string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.StoreDriver, cfg.Availability.Calculator().Mode(), cfg.Version)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/live", healthHandler.Live)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerLocationRoutes(api, base, cfg)
	registerProductRoutes(api, base, cfg)
	registerDocumentRoutes(api, base, cfg)
	registerRegisterRoutes(api, base, cfg)
	registerReportRoutes(api, base, cfg)

	return router
}

func registerLocationRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewLocationHandler(base, cfg.Locations)
	rg.GET("/locations", h.List)
	rg.POST("/warehouses", h.CreateWarehouse)
	rg.POST("/shops", h.CreateShop)
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewProductHandler(base, cfg.Guard, cfg.Availability, cfg.Products)
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("/:id", h.Get)
		products.GET("/:id/availability", h.Availability)
		products.GET("/:id/locations", h.Locations)
	}
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewDocumentHandler(base, cfg.Guard)

	rg.POST("/purchases", h.CreatePurchase)
	rg.DELETE("/purchases/:id", h.DeactivatePurchase)

	rg.POST("/transfers", h.CreateTransfer)
	rg.POST("/transfers/:id/cancel", h.CancelTransfer)

	rg.POST("/damages", h.CreateDamage)
	rg.POST("/damages/:id/approve", h.ApproveDamage)
	rg.POST("/damages/:id/reject", h.RejectDamage)

	rg.POST("/sales", h.CreateSale)
}

func registerRegisterRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockHandler(base, cfg.Stock)
	reg := rg.Group("/registers/stock")
	{
		reg.GET("/balances", h.GetBalances)
		reg.GET("/movements", h.GetMovements)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Reports == nil {
		return
	}
	h := handlers.NewReportHandler(base, cfg.Reports)
	rg.GET("/reports/stock-turnover", h.StockTurnover)
}
