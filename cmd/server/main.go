package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/infrastructure/carrier"
	"github.com/erp/shipping/internal/infrastructure/config"
	"github.com/erp/shipping/internal/infrastructure/deadletter"
	"github.com/erp/shipping/internal/infrastructure/logger"
	"github.com/erp/shipping/internal/infrastructure/persistence"
	"github.com/erp/shipping/internal/interfaces/http/handler"
	"github.com/erp/shipping/internal/interfaces/http/middleware"
	"github.com/erp/shipping/internal/interfaces/http/router"
)

//	@title			Shipping Engine API
//	@version		1.0
//	@description	Shipment lifecycle and carrier integration service - AWB tracking, webhooks, COD and NDR handling
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.email	support@erp.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Shipping Engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	carrierAccountRepo := persistence.NewGormCarrierAccountRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	codRemittanceRepo := persistence.NewGormCODRemittanceRepository(db.DB)

	// Carrier adapter registry. Unknown providers fall through to the inert
	// adapter, so a misconfigured account degrades instead of crashing.
	registry := carrier.NewRegistry()

	shiprocketCfg := carrier.NewShiprocketConfig()
	if cfg.Carrier.ShiprocketBaseURL != "" {
		shiprocketCfg.APIBaseURL = cfg.Carrier.ShiprocketBaseURL
	}
	shiprocketCfg.TimeoutSeconds = cfg.Carrier.TimeoutSeconds
	shiprocketAdapter, err := carrier.NewShiprocketAdapter(shiprocketCfg)
	if err != nil {
		log.Fatal("Failed to initialize Shiprocket adapter", zap.Error(err))
	}
	registry.Register(shiprocketAdapter)

	delhiveryCfg := carrier.NewDelhiveryConfig()
	if cfg.Carrier.DelhiveryBaseURL != "" {
		delhiveryCfg.APIBaseURL = cfg.Carrier.DelhiveryBaseURL
	}
	delhiveryCfg.PickupLocation = cfg.Carrier.DelhiveryPickupLocation
	delhiveryCfg.TimeoutSeconds = cfg.Carrier.TimeoutSeconds
	delhiveryAdapter, err := carrier.NewDelhiveryAdapter(delhiveryCfg)
	if err != nil {
		log.Fatal("Failed to initialize Delhivery adapter", zap.Error(err))
	}
	registry.Register(delhiveryAdapter)
	registry.Register(carrier.NewNoopAdapter())

	log.Info("Carrier adapters registered",
		zap.String("shiprocket_url", shiprocketCfg.APIBaseURL),
		zap.String("delhivery_url", delhiveryCfg.APIBaseURL),
	)

	// Dead letter store: Redis-backed, with in-memory fallback outside
	// production so local development does not require Redis
	dlFactory := deadletter.NewStoreFactory(cfg.Redis,
		deadletter.WithLogger(log),
		deadletter.WithInMemoryFallback(cfg.Tracking.AllowInMemoryDeadLetter),
	)
	deadLetterStore, err := dlFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize dead letter store", zap.Error(err))
	}

	// Initialize application services
	resolver := shippingapp.NewCarrierContextResolver(carrierAccountRepo, registry)
	accountService := shippingapp.NewCarrierAccountService(carrierAccountRepo)
	shipmentService := shippingapp.NewShipmentService(
		shipmentRepo, salesOrderRepo, resolver, cfg.Carrier, cfg.Tracking, log)
	trackingService := shippingapp.NewTrackingService(
		shipmentRepo, salesOrderRepo, resolver, deadLetterStore, log)
	codService := shippingapp.NewCODService(shipmentRepo, codRemittanceRepo)

	// Initialize HTTP handlers
	shipmentHandler := handler.NewShipmentHandler(shipmentService, trackingService)
	webhookHandler := handler.NewWebhookHandler(trackingService)
	codHandler := handler.NewCODHandler(codService)
	carrierAccountHandler := handler.NewCarrierAccountHandler(accountService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tenant resolution. Webhook routes are skipped because carriers cannot
	// send tenant headers; those payloads are routed by AWB.
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Shipping domain routes
	shippingRoutes := router.NewDomainGroup("shipping", "/shipping")
	shippingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "shipping service ready"})
	})

	// Shipment lifecycle
	shippingRoutes.POST("/shipments", shipmentHandler.Create)
	shippingRoutes.GET("/shipments", shipmentHandler.List)
	shippingRoutes.POST("/shipments/awb-sweep", shipmentHandler.SweepPendingAWBs)
	shippingRoutes.GET("/shipments/:id", shipmentHandler.GetByID)
	shippingRoutes.POST("/shipments/:id/awb", shipmentHandler.AssignAWB)
	shippingRoutes.POST("/shipments/:id/label", shipmentHandler.GenerateLabel)
	shippingRoutes.POST("/shipments/:id/pickup", shipmentHandler.SchedulePickup)
	shippingRoutes.POST("/shipments/:id/ndr", shipmentHandler.HandleNDR)
	shippingRoutes.POST("/shipments/:id/cancel", shipmentHandler.Cancel)
	shippingRoutes.POST("/shipments/:id/sync", shipmentHandler.SyncTracking)
	shippingRoutes.GET("/serviceability", shipmentHandler.CheckServiceability)

	// Carrier webhooks (no tenant context, routed by AWB)
	shippingRoutes.POST("/webhooks/carrier", webhookHandler.Receive)
	shippingRoutes.GET("/webhooks/dead-letters", webhookHandler.DeadLetters)

	// Cash on delivery
	shippingRoutes.GET("/cod/pending", codHandler.Pending)
	shippingRoutes.GET("/cod/remittances", codHandler.ListRemittances)
	shippingRoutes.POST("/shipments/:id/cod/collect", codHandler.MarkCollected)

	// Carrier account management
	shippingRoutes.POST("/carrier-accounts", carrierAccountHandler.Create)
	shippingRoutes.GET("/carrier-accounts", carrierAccountHandler.List)
	shippingRoutes.GET("/carrier-accounts/:id", carrierAccountHandler.GetByID)
	shippingRoutes.PUT("/carrier-accounts/:id", carrierAccountHandler.Update)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(shippingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Background AWB sweep: shipments whose carrier accepted the order but
	// returned no tracking number get retried until one sticks
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runAWBSweep(sweepCtx, shipmentService, cfg.Tracking.AWBSweepInterval, log)
	defer stopSweep()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runAWBSweep periodically retries AWB assignment for shipments that are
// still waiting on one. The nil tenant scans across all tenants.
func runAWBSweep(ctx context.Context, shipments *shippingapp.ShipmentService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	log.Info("AWB sweep started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("AWB sweep stopped")
			return
		case <-ticker.C:
			result, err := shipments.AssignPendingAWBs(ctx, uuid.Nil)
			if err != nil {
				log.Warn("AWB sweep failed", zap.Error(err))
				continue
			}
			if result.Scanned > 0 {
				log.Info("AWB sweep completed",
					zap.Int("scanned", result.Scanned),
					zap.Int("assigned", result.Assigned),
					zap.Int("failed", result.Failed),
				)
			}
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
