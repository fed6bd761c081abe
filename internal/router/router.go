package router

import (
	"time"

	"github.com/abdoul9859/techplus/internal/config"
	"github.com/abdoul9859/techplus/internal/handler"
	"github.com/abdoul9859/techplus/internal/middleware"
	"github.com/abdoul9859/techplus/internal/repository"
	"github.com/abdoul9859/techplus/internal/service"
	"github.com/abdoul9859/techplus/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	defaultTax, err := decimal.NewFromString(cfg.DefaultTaxRate)
	if err != nil {
		defaultTax = decimal.NewFromInt(18)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	noteRepo := repository.NewDeliveryNoteRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	importRepo := repository.NewImportRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(productRepo, movementRepo)
	productSvc := service.NewProductService(productRepo, movementRepo, stockSvc)
	categorySvc := service.NewCategoryService(categoryRepo)
	clientSvc := service.NewClientService(clientRepo, invoiceRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, productRepo, clientRepo, noteRepo, stockSvc, dispatcher, defaultTax)
	quotationSvc := service.NewQuotationService(quotationRepo, clientRepo, invoiceSvc, dispatcher, defaultTax)
	noteSvc := service.NewDeliveryNoteService(noteRepo, invoiceRepo)
	debtSvc := service.NewDebtService(debtRepo, supplierRepo, invoiceRepo)
	importSvc := service.NewImportService(importRepo, dispatcher, cfg.ImportTempPath)
	settingSvc := service.NewSettingService(settingRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	productsH := handler.NewProductsHandler(productSvc)
	quotationsH := handler.NewQuotationsHandler(quotationSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc, noteSvc)
	notesH := handler.NewDeliveryNotesHandler(noteSvc)
	debtsH := handler.NewDebtsHandler(debtSvc)
	importsH := handler.NewImportsHandler(importSvc)
	settingsH := handler.NewSettingsHandler(settingSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		// Roles: user, manager, admin — reads open to all authenticated users,
		// document writes to manager and admin, administration to admin only
		writers := middleware.RequireRole("manager", "admin")
		admins := middleware.RequireRole("admin")

		api.PUT("/auth/password", authH.ChangePassword)

		users := api.Group("/users", admins)
		{
			users.POST("", authH.Register)
			users.GET("", authH.ListUsers)
			users.DELETE("/:id", authH.Deactivate)
		}

		api.GET("/clients", clientsH.List)
		api.GET("/clients/:id", clientsH.Get)
		api.GET("/clients/:id/balance", clientsH.Balance)
		api.POST("/clients", writers, clientsH.Create)
		api.PUT("/clients/:id", writers, clientsH.Update)
		api.DELETE("/clients/:id", writers, clientsH.Delete)

		api.GET("/suppliers", suppliersH.List)
		api.GET("/suppliers/:id", suppliersH.Get)
		api.POST("/suppliers", writers, suppliersH.Create)
		api.PUT("/suppliers/:id", writers, suppliersH.Update)
		api.DELETE("/suppliers/:id", writers, suppliersH.Delete)

		api.GET("/categories", categoriesH.List)
		api.GET("/categories/:id", categoriesH.Get)
		api.POST("/categories", writers, categoriesH.Create)
		api.PUT("/categories/:id", writers, categoriesH.Update)
		api.DELETE("/categories/:id", writers, categoriesH.Delete)

		api.GET("/products", productsH.List)
		api.GET("/products/scan/:barcode", productsH.Scan)
		api.GET("/products/:id", productsH.Get)
		api.POST("/products", writers, productsH.Create)
		api.PUT("/products/:id", writers, productsH.Update)
		api.DELETE("/products/:id", writers, productsH.Delete)

		api.GET("/stock-movements", productsH.Movements)

		api.GET("/quotations", quotationsH.List)
		api.GET("/quotations/:id", quotationsH.Get)
		api.POST("/quotations", writers, quotationsH.Create)
		api.PUT("/quotations/:id", writers, quotationsH.Update)
		api.DELETE("/quotations/:id", writers, quotationsH.Delete)
		api.PUT("/quotations/:id/status", writers, quotationsH.SetStatus)
		api.PUT("/quotations/:id/sent", writers, quotationsH.SetSent)
		api.POST("/quotations/:id/convert", writers, quotationsH.Convert)

		api.GET("/invoices", invoicesH.List)
		api.GET("/invoices/:id", invoicesH.Get)
		api.POST("/invoices", writers, invoicesH.Create)
		api.PUT("/invoices/:id", writers, invoicesH.Update)
		api.DELETE("/invoices/:id", writers, invoicesH.Delete)
		api.PUT("/invoices/:id/status", writers, invoicesH.SetStatus)
		api.POST("/invoices/:id/payments", writers, invoicesH.AddPayment)
		api.POST("/invoices/:id/delivery-note", writers, invoicesH.DeriveDeliveryNote)

		api.GET("/delivery-notes", notesH.List)
		api.GET("/delivery-notes/:id", notesH.Get)
		api.PUT("/delivery-notes/:id", writers, notesH.Update)
		api.DELETE("/delivery-notes/:id", writers, notesH.Delete)
		api.PUT("/delivery-notes/:id/status", writers, notesH.SetStatus)
		api.POST("/delivery-notes/:id/sign", writers, notesH.Sign)

		api.GET("/debts", debtsH.Overview)
		api.GET("/debts/suppliers", debtsH.List)
		api.GET("/debts/suppliers/:id", debtsH.Get)
		api.POST("/debts/suppliers", writers, debtsH.Create)
		api.PUT("/debts/suppliers/:id", writers, debtsH.Update)
		api.DELETE("/debts/suppliers/:id", writers, debtsH.Delete)
		api.POST("/debts/suppliers/:id/payments", writers, debtsH.AddPayment)

		// Per-user preferences; payment method writes follow the document rule
		api.GET("/settings", settingsH.List)
		api.GET("/settings/payment-methods", settingsH.PaymentMethods)
		api.PUT("/settings/payment-methods", writers, settingsH.SetPaymentMethods)
		api.GET("/settings/scan-history", settingsH.ScanHistory)
		api.POST("/settings/scan-history", settingsH.AddScan)
		api.DELETE("/settings/scan-history", settingsH.ClearScanHistory)
		api.GET("/settings/:key", settingsH.Get)
		api.PUT("/settings/:key", settingsH.Set)
		api.DELETE("/settings/:key", settingsH.Delete)

		api.POST("/imports", admins, importsH.Create)
		api.GET("/imports", admins, importsH.List)
		api.GET("/imports/:id", admins, importsH.Get)
	}

	return r
}
