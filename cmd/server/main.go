package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	alertingapp "github.com/pricewatch/backend/internal/application/alerting"
	catalogapp "github.com/pricewatch/backend/internal/application/catalog"
	competitorapp "github.com/pricewatch/backend/internal/application/competitor"
	matchingapp "github.com/pricewatch/backend/internal/application/matching"
	scrapingapp "github.com/pricewatch/backend/internal/application/scraping"
	syncingapp "github.com/pricewatch/backend/internal/application/syncing"
	"github.com/pricewatch/backend/internal/infrastructure/cache"
	"github.com/pricewatch/backend/internal/infrastructure/catalogapi"
	"github.com/pricewatch/backend/internal/infrastructure/config"
	"github.com/pricewatch/backend/internal/infrastructure/embedding"
	"github.com/pricewatch/backend/internal/infrastructure/logger"
	"github.com/pricewatch/backend/internal/infrastructure/persistence"
	"github.com/pricewatch/backend/internal/interfaces/http/handler"
	"github.com/pricewatch/backend/internal/interfaces/http/middleware"
	"github.com/pricewatch/backend/internal/interfaces/http/router"
)

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

	log.Info("Starting Pricewatch Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
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
	productRepo := persistence.NewGormProductRepository(db.DB)
	brandRepo := persistence.NewGormMonitoredBrandRepository(db.DB)
	competitorRepo := persistence.NewGormCompetitorRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	historyRepo := persistence.NewGormPriceHistoryRepository(db.DB)
	jobRepo := persistence.NewGormScrapeJobRepository(db.DB)
	matchRepo := persistence.NewGormMatchRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)

	// Embedding vector cache: Redis when configured, in-memory otherwise
	cacheFactory := cache.NewVectorCacheFactory(cfg.Redis, cache.WithLogger(log))
	vectorCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create vector cache", zap.Error(err))
	}

	// External clients
	embedClient, err := embedding.NewClient(cfg.Embedding, log)
	if err != nil {
		log.Fatal("Failed to create embedding client", zap.Error(err))
	}
	embedder := embedding.NewCachedEmbedder(embedClient, vectorCache, cfg.Embedding.CacheTTL)

	catalogClient, err := catalogapi.NewClient(cfg.CatalogAPI)
	if err != nil {
		log.Fatal("Failed to create catalog API client", zap.Error(err))
	}

	// Initialize application services
	scorer, err := matchingapp.NewScorer(cfg.Matcher)
	if err != nil {
		log.Fatal("Invalid matcher configuration", zap.Error(err))
	}

	catalogService := catalogapp.NewCatalogService(productRepo, brandRepo)
	competitorService := competitorapp.NewCompetitorService(competitorRepo, listingRepo, historyRepo)
	matchService := matchingapp.NewMatchService(productRepo, listingRepo, matchRepo, scorer, cfg.Matcher.CandidatePoolSize)
	fetcher := scrapingapp.NewCollectionFetcher(cfg.Scraper)
	scraperService := scrapingapp.NewScraperService(competitorRepo, listingRepo, historyRepo, jobRepo, fetcher, embedder, cfg.Scraper, log)
	syncService := syncingapp.NewCatalogSyncService(brandRepo, productRepo, catalogClient, embedder, cfg.Embedding, log)
	violationService := alertingapp.NewViolationService(matchRepo, productRepo, listingRepo, alertRepo, cfg.Alerts, log)

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(catalogService)
	competitorHandler := handler.NewCompetitorHandler(competitorService)
	matchHandler := handler.NewMatchHandler(matchService)
	scrapeHandler := handler.NewScrapeHandler(scraperService)
	syncHandler := handler.NewSyncHandler(syncService)
	alertHandler := handler.NewAlertHandler(violationService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

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

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Catalog domain (products, monitored brands)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", catalogHandler.ListProducts)
	catalogRoutes.GET("/products/:id", catalogHandler.GetProduct)
	catalogRoutes.GET("/products/:id/matches", matchHandler.ListForProduct)
	catalogRoutes.POST("/brands", catalogHandler.CreateBrand)
	catalogRoutes.GET("/brands", catalogHandler.ListBrands)
	catalogRoutes.POST("/brands/:id/activate", catalogHandler.ActivateBrand)
	catalogRoutes.POST("/brands/:id/deactivate", catalogHandler.DeactivateBrand)

	// Competitor domain (competitors, listings, price history)
	competitorRoutes := router.NewDomainGroup("competitor", "/competitors")
	competitorRoutes.POST("", competitorHandler.Register)
	competitorRoutes.GET("", competitorHandler.List)
	competitorRoutes.GET("/:id", competitorHandler.GetByID)
	competitorRoutes.PUT("/:id", competitorHandler.Update)
	competitorRoutes.POST("/:id/activate", competitorHandler.Activate)
	competitorRoutes.POST("/:id/deactivate", competitorHandler.Deactivate)

	listingRoutes := router.NewDomainGroup("listing", "/listings")
	listingRoutes.GET("", competitorHandler.ListListings)
	listingRoutes.GET("/:id", competitorHandler.GetListing)
	listingRoutes.GET("/:id/history", competitorHandler.ListingHistory)

	// Scraping domain (jobs and runs)
	scrapeRoutes := router.NewDomainGroup("scraping", "/scrape")
	scrapeRoutes.POST("", scrapeHandler.ScrapeAll)
	scrapeRoutes.POST("/:competitorId", scrapeHandler.Start)
	scrapeRoutes.GET("/jobs", scrapeHandler.ListJobs)
	scrapeRoutes.GET("/jobs/:id", scrapeHandler.GetJob)

	// Catalog sync domain
	syncRoutes := router.NewDomainGroup("syncing", "/sync")
	syncRoutes.POST("", syncHandler.Run)
	syncRoutes.POST("/embeddings", syncHandler.BackfillEmbeddings)

	// Matching domain
	matchRoutes := router.NewDomainGroup("matching", "/matches")
	matchRoutes.POST("/auto", matchHandler.AutoMatch)
	matchRoutes.POST("/manual", matchHandler.ManualMatch)
	matchRoutes.POST("/preview", matchHandler.Preview)
	matchRoutes.GET("", matchHandler.List)
	matchRoutes.GET("/:id", matchHandler.GetByID)

	// Alerting domain (violation scans, alert lifecycle)
	alertRoutes := router.NewDomainGroup("alerting", "/alerts")
	alertRoutes.POST("/scan", alertHandler.Scan)
	alertRoutes.GET("", alertHandler.List)
	alertRoutes.GET("/:id", alertHandler.GetByID)
	alertRoutes.POST("/:id/resolve", alertHandler.Resolve)
	alertRoutes.POST("/:id/dismiss", alertHandler.Dismiss)
	alertRoutes.POST("/bulk-resolve", alertHandler.BulkResolve)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(catalogRoutes).
		Register(competitorRoutes).
		Register(listingRoutes).
		Register(scrapeRoutes).
		Register(syncRoutes).
		Register(matchRoutes).
		Register(alertRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
