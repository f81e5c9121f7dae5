package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	identityapp "github.com/storefront/backend/internal/application/identity"
	invoiceapp "github.com/storefront/backend/internal/application/invoice"
	newsletterapp "github.com/storefront/backend/internal/application/newsletter"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	returnsapp "github.com/storefront/backend/internal/application/returns"
	searchapp "github.com/storefront/backend/internal/application/search"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/marketing"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/search"
	"github.com/storefront/backend/internal/infrastructure/shipping"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Storefront backend: catalog, carts, checkout with Stripe, fulfillment with Sendcloud, returns, wishlists and newsletter.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/storefront/backend
//	@contact.email	support@storefront.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:9000
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.App, cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// OpenTelemetry: traces, metrics, logs and profiles
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", lp.Shutdown)
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	metrics, err := telemetry.NewBusinessMetrics(mp.Meter("storefront"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	log.Info("Starting Storefront Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	currency, err := valueobject.ParseCurrency(cfg.Store.Currency)
	if err != nil {
		log.Fatal("Invalid store currency", zap.String("currency", cfg.Store.Currency), zap.Error(err))
	}

	// Initialize database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	adminRepo := persistence.NewGormAdminUserRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	fulfillmentRepo := persistence.NewGormFulfillmentRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	invoiceConfigRepo := persistence.NewGormInvoiceConfigRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)

	// Cache and idempotency stores (Redis or in-memory)
	stores, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// External integrations. Each stays a nil interface when not configured.
	var (
		gateway  cartapp.PaymentGateway
		canceler orderapp.PaymentCanceler
		refunder returnsapp.Refunder
		verifier paymentapp.WebhookVerifier
	)
	if cfg.Stripe.Enabled() {
		stripeClient, err := payment.NewStripeClient(cfg.Stripe)
		if err != nil {
			log.Fatal("Failed to initialize Stripe client", zap.Error(err))
		}
		gateway, canceler, refunder, verifier = stripeClient, stripeClient, stripeClient, stripeClient
		log.Info("Stripe payments enabled")
	}

	var (
		methodSource shippingapp.MethodSource
		providers    []fulfillment.Provider
	)
	if cfg.Sendcloud.Enabled {
		sendcloudClient, err := shipping.NewSendcloudClient(cfg.Sendcloud)
		if err != nil {
			log.Fatal("Failed to initialize Sendcloud client", zap.Error(err))
		}
		methodSource = sendcloudClient
		providers = append(providers, shipping.NewSendcloudProvider(sendcloudClient))
		log.Info("Sendcloud fulfillment enabled", zap.String("base_url", cfg.Sendcloud.BaseURL))
	}
	providers = append(providers, shipping.NewManualProvider())

	index, err := search.NewIndex(cfg.Search, log)
	if err != nil {
		log.Fatal("Failed to initialize search index", zap.Error(err))
	}

	notifier, err := notification.New(cfg.Notification, cfg.Mailchimp, log)
	if err != nil {
		log.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	var mailingList newsletterapp.MailingList
	if cfg.Mailchimp.MarketingEnabled() {
		mailchimp, err := marketing.NewMailchimpClient(cfg.Mailchimp)
		if err != nil {
			log.Fatal("Failed to initialize Mailchimp client", zap.Error(err))
		}
		mailingList = mailchimp
	}

	var (
		labelArchive   fulfillmentapp.ObjectStorage
		invoiceArchive invoiceapp.ObjectStorage
	)
	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		labelArchive, invoiceArchive = objectStorage, objectStorage
		log.Info("Object storage enabled", zap.String("bucket", objectStorage.GetBucket()))
	}

	var renderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			ExecPath:       cfg.Printing.ChromePath,
			NoSandbox:      true,
		})
		defer func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		renderer = chrome
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	productService := catalogapp.NewProductService(productRepo, eventBus, currency, log)
	authService := identityapp.NewAuthService(customerRepo, adminRepo, jwtService, eventBus, log)
	shippingService := shippingapp.NewService(cartRepo, methodSource, stores.Cache, cfg.Sendcloud, log)
	cartService := cartapp.NewCartService(cartapp.Deps{
		Carts:     cartRepo,
		Orders:    orderRepo,
		Customers: customerRepo,
		Catalog:   productService,
		Shipping:  shippingService,
		Payments:  gateway,
		Publisher: eventBus,
		Metrics:   metrics,
		Currency:  currency,
	}, log)
	orderService := orderapp.NewOrderService(orderRepo, fulfillmentRepo, canceler, productService, eventBus, metrics, log)
	fulfillmentService := fulfillmentapp.NewFulfillmentService(orderRepo, fulfillmentRepo, providers, eventBus, log)
	labelService := fulfillmentapp.NewLabelService(fulfillmentRepo, providers, labelArchive, cfg.Storage.PresignExpiration, metrics, log)
	returnService := returnsapp.NewReturnService(returnRepo, orderRepo, fulfillmentRepo, fulfillmentService, refunder, eventBus, metrics, log)
	webhookService := paymentapp.NewWebhookService(paymentapp.WebhookServiceConfig{
		Verifier:    verifier,
		Carts:       cartService,
		CartRepo:    cartRepo,
		Idempotency: stores.Idempotency,
		DedupTTL:    cfg.Stripe.IdempotencyTTL,
		Metrics:     metrics,
		Logger:      log,
	})
	wishlistService := wishlistapp.NewWishlistService(wishlistRepo, productService, log)
	newsletterService := newsletterapp.NewNewsletterService(subscriptionRepo, mailingList, log)
	invoiceService, err := invoiceapp.NewInvoiceService(invoiceConfigRepo, invoiceRepo, orderRepo, renderer, invoiceArchive,
		invoiceapp.Store{Name: cfg.Store.Name, Locale: cfg.Store.Locale}, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice service", zap.Error(err))
	}
	searchService := searchapp.NewService(productRepo, index, log,
		searchapp.WithBatchSize(cfg.Search.ReindexBatchSize),
		searchapp.WithConcurrency(cfg.Search.ReindexConcurrency),
		searchapp.WithMetrics(metrics),
	)

	if created, err := authService.BootstrapAdmin(ctx, cfg.Admin); err != nil {
		log.Fatal("Failed to bootstrap admin user", zap.Error(err))
	} else if created {
		log.Info("Bootstrap admin user created", zap.String("email", cfg.Admin.BootstrapEmail))
	}

	// Event subscribers
	eventBus.Subscribe(searchapp.NewProductIndexer(productRepo, index, log))
	eventBus.Subscribe(notificationapp.NewEmailHandler(notifier, orderRepo,
		notificationapp.Store{Name: cfg.Store.Name, URL: cfg.Store.URL}, log))
	eventBus.Subscribe(invoiceapp.NewStaleHandler(invoiceService))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Newsletter resync scheduler (negative interval disables it)
	if cfg.Mailchimp.ResyncInterval > 0 && mailingList != nil {
		syncScheduler := scheduler.NewNewsletterSyncScheduler(newsletterService, log, scheduler.NewsletterSyncSchedulerConfig{
			Enabled:  true,
			Interval: cfg.Mailchimp.ResyncInterval,
		})
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start newsletter sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping newsletter sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Newsletter sync scheduler started", zap.Duration("interval", cfg.Mailchimp.ResyncInterval))
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Start the server span so logs carry trace IDs
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Metrics and profiling labels
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(mp))
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	authenticate := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})
	guards := router.Guards{
		Authenticate: authenticate,
		OptionalAuth: middleware.OptionalJWTAuthMiddleware(jwtService),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthRateLimit = middleware.AuthRateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Product:     handler.NewProductHandler(productService),
		Search:      handler.NewSearchHandler(searchService),
		Cart:        handler.NewCartHandler(cartService, shippingService),
		Order:       handler.NewOrderHandler(orderService),
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService, labelService),
		Return:      handler.NewReturnHandler(returnService),
		Wishlist:    handler.NewWishlistHandler(wishlistService),
		Newsletter:  handler.NewNewsletterHandler(newsletterService),
		Webhook:     handler.NewStripeWebhookHandler(webhookService),
		System: handler.NewSystemHandler(version, map[string]handler.Pinger{
			"database": db,
			"cache":    stores,
		}),
	}
	router.Mount(engine, handlers, guards, cfg.HTTP.WebhookMaxBodySize)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, authenticate, middleware.RequireAdmin()),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// shutdown flushes a telemetry provider with a bounded timeout
func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
