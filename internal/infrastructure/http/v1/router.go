// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"officina/internal/core/actor"
	"officina/internal/domain/invoices"
	"officina/internal/domain/ledger"
	"officina/internal/domain/orders"
	"officina/internal/domain/quotes"
	"officina/internal/domain/repairs"
	"officina/internal/infrastructure/http/v1/handlers"
	"officina/internal/infrastructure/http/v1/middleware"
	"officina/pkg/logger"
)

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTSecret verifies access tokens issued by the external auth service
	JWTSecret string

	// Pool is nil when running against in-memory stores
	Pool *pgxpool.Pool

	Repairs  *repairs.Service
	Quotes   *quotes.Service
	Orders   *orders.Service
	Invoices *invoices.Service
	Ledger   *ledger.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	baseHandler := handlers.NewBaseHandler()

	// API v1, JWT required
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		repairHandler := handlers.NewRepairHandler(baseHandler, cfg.Repairs)
		repairHandler.RegisterRoutes(api.Group("/repairs"))

		// Quote operations move the ticket; the workflow's own role rules
		// apply, so no extra route-level gate here.
		quoteHandler := handlers.NewQuoteHandler(baseHandler, cfg.Quotes)
		quoteHandler.RegisterRoutes(api.Group("/quotes"))

		orderHandler := handlers.NewOrderHandler(baseHandler, cfg.Orders)
		ordersGroup := api.Group("/orders")
		ordersGroup.Use(middleware.RequireRole(actor.RoleAdmin, actor.RoleCommercial))
		orderHandler.RegisterRoutes(ordersGroup)

		invoiceHandler := handlers.NewInvoiceHandler(baseHandler, cfg.Invoices)
		invoicesGroup := api.Group("/invoices")
		invoicesGroup.Use(middleware.RequireRole(actor.RoleAdmin, actor.RoleCommercial))
		invoiceHandler.RegisterRoutes(invoicesGroup)

		stockHandler := handlers.NewStockHandler(baseHandler, cfg.Ledger)
		stockGroup := api.Group("/stock")
		stockGroup.Use(middleware.RequireRole(actor.RoleAdmin))
		stockHandler.RegisterRoutes(stockGroup)
	}

	return router
}
