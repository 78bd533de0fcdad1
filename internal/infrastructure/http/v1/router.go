package v1

import (
	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/catalogs/product"
	"stocktrack/internal/domain/catalogs/warehouse"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/sales"
	"stocktrack/internal/domain/transfers"
	"stocktrack/internal/infrastructure/http/v1/handlers"
	"stocktrack/internal/infrastructure/http/v1/middleware"
	"stocktrack/internal/infrastructure/storage/postgres"
	"stocktrack/internal/infrastructure/storage/postgres/catalog_repo"
	"stocktrack/internal/infrastructure/storage/postgres/document_repo"
	"stocktrack/internal/infrastructure/storage/postgres/ledger_repo"
	"stocktrack/pkg/logger"
	"stocktrack/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager coordinates transactions across repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for document number generation
	Numerator numerator.Generator

	// Audit records document lifecycle events (optional)
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		registerCatalogRoutes(apiV1, cfg)
		registerStockRoutes(apiV1, cfg)
		registerSalesRoutes(apiV1, cfg)
		registerTransferRoutes(apiV1, cfg)
	}

	return router
}

// registerCatalogRoutes registers product and warehouse catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)

		group := catalogs.Group("/products")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-sku/:sku", handler.FindBySKU)
		group.GET("/by-barcode/:barcode", handler.FindByBarcode)
	}

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo(cfg.TxManager)
		service := warehouse.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler)
	}
}

// registerStockRoutes registers stock ledger endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	service := newLedgerService(cfg)
	handler := handlers.NewStockHandler(baseHandler, service)

	stock := rg.Group("/stock")
	{
		stock.POST("/movements", handler.ApplyMovement)
		stock.GET("/positions", handler.GetPositions)
		stock.GET("/availability/:productId", handler.GetAvailability)
		stock.GET("/ledger", handler.GetLedger)
		stock.GET("/valuation", handler.GetValuation)
		stock.POST("/reconcile", handler.Reconcile)
	}
}

// registerSalesRoutes registers sale consumption endpoints.
func registerSalesRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	saleRepo := document_repo.NewSaleRepo(cfg.TxManager)
	positionRepo := ledger_repo.NewPositionRepo(cfg.TxManager)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(cfg.TxManager)

	productService := product.NewService(productRepo, cfg.TxManager, cfg.Numerator)
	service := sales.NewService(
		saleRepo,
		positionRepo,
		productService,
		warehouseRepo,
		cfg.Numerator,
		cfg.TxManager,
	)

	handler := handlers.NewSalesHandler(baseHandler, service)

	group := rg.Group("/sales")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
	}
}

// registerTransferRoutes registers transfer workflow endpoints.
func registerTransferRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	transferRepo := document_repo.NewTransferRepo(cfg.TxManager)
	positionRepo := ledger_repo.NewPositionRepo(cfg.TxManager)
	logRepo := ledger_repo.NewLogRepo(cfg.TxManager)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(cfg.TxManager)

	service := transfers.NewService(
		transferRepo,
		positionRepo,
		logRepo,
		productRepo,
		warehouseRepo,
		cfg.Numerator,
		cfg.TxManager,
	)

	handler := handlers.NewTransfersHandler(baseHandler, service, cfg.Audit, cfg.Logger)

	group := rg.Group("/transfers")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("/:id/approve", handler.Approve)
		group.POST("/:id/cancel", handler.Cancel)
	}
}

// newLedgerService wires the ledger service with its repositories.
func newLedgerService(cfg RouterConfig) *ledger.Service {
	positionRepo := ledger_repo.NewPositionRepo(cfg.TxManager)
	logRepo := ledger_repo.NewLogRepo(cfg.TxManager)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(cfg.TxManager)

	return ledger.NewService(
		positionRepo,
		logRepo,
		productRepo,
		warehouseRepo,
		cfg.TxManager,
	)
}
