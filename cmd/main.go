package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"devboma/internal/analytics"
	"devboma/internal/caching"
	"devboma/internal/config"
	"devboma/internal/handlers"
	"devboma/internal/jobs/background"
	"devboma/internal/middleware"
	"devboma/internal/repositories"
	"devboma/internal/services"
	"devboma/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	cacheService := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	mediaService, err := services.NewMediaService(cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := mediaService.EnsureBucket(context.Background()); err != nil {
		log.Printf("WARN: could not ensure media bucket: %v", err)
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepository(pool)
	shopRepo := repositories.NewShopRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	domainRepo := repositories.NewDomainRepository(pool)
	activityRepo := repositories.NewActivityLogRepository(pool)

	// Services
	pricing := services.Pricing{
		ShippingFlatFee: cfg.ShippingFlatFee,
		TaxRateBasisPts: cfg.TaxRateBasisPts,
	}
	orderService := services.NewOrderService(orderRepo, productRepo, shopRepo, customerRepo,
		pricing, cfg.OrderWriteTimeout)
	productService := services.NewProductService(productRepo, shopRepo, cacheService)
	shopService := services.NewShopService(shopRepo)
	customerService := services.NewCustomerService(customerRepo)
	tenantService := services.NewTenantService(tenantRepo)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, shopRepo, cfg.PaystackSecret)
	analyticsService := analytics.NewAnalyticsService(pool, cacheService)

	// Handlers
	orderHandlers := handlers.NewOrderHandlers(orderService)
	productHandlers := handlers.NewProductHandlers(productService, mediaService)
	shopHandlers := handlers.NewShopHandlers(shopService)
	customerHandlers := handlers.NewCustomerHandlers(customerService)
	tenantHandlers := handlers.NewTenantHandlers(tenantService)
	paymentHandlers := handlers.NewPaymentHandlers(paymentService)
	domainHandlers := handlers.NewDomainHandlers(domainRepo, shopRepo)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsService)
	authHandlers := handlers.NewAuthHandlers(userRepo)
	activityHandlers := handlers.NewActivityHandlers(activityRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheService)

	authMiddleware, err := middleware.NewAuthMiddleware(userRepo, cfg.JWKSURL, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	scheduler, err := background.NewJobScheduler(analyticsService, tenantRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())

	e.GET("/healthz", healthHandlers.Health)
	e.GET("/readyz", healthHandlers.Ready)

	// Gateway callbacks authenticate via HMAC (or issued reference), not
	// bearer tokens.
	e.POST("/v1/webhooks/paystack", paymentHandlers.PaystackWebhook)
	e.POST("/v1/webhooks/mpesa", paymentHandlers.MpesaCallback)

	v1 := e.Group("/v1", authMiddleware.Authenticate, middleware.ActivityLogger(activityRepo))
	v1.GET("/auth/me", authHandlers.Me)

	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.POST("/clients", tenantHandlers.CreateTenant)
	admin.GET("/clients", tenantHandlers.ListTenants)
	admin.GET("/clients/:id", tenantHandlers.GetTenant)
	admin.PUT("/clients/:id", tenantHandlers.UpdateTenant)
	admin.GET("/stats", analyticsHandlers.PlatformStats)
	admin.GET("/jobs", func(c echo.Context) error {
		return c.JSON(http.StatusOK, scheduler.Status())
	})

	client := v1.Group("/clients/:clientId", middleware.TenantGuard)

	client.POST("/shops", shopHandlers.CreateShop)
	client.GET("/shops", shopHandlers.ListShops)
	client.GET("/shops/:id", shopHandlers.GetShop)
	client.PUT("/shops/:id", shopHandlers.UpdateShop)
	client.DELETE("/shops/:id", shopHandlers.DeleteShop)

	client.POST("/products", productHandlers.CreateProduct)
	client.GET("/products", productHandlers.ListProducts)
	client.GET("/products/:id", productHandlers.GetProduct)
	client.PUT("/products/:id", productHandlers.UpdateProduct)
	client.DELETE("/products/:id", productHandlers.DeleteProduct)
	client.POST("/products/:id/inventory", productHandlers.AdjustInventory)
	client.POST("/products/:id/images", productHandlers.UploadImage)

	client.POST("/customers", customerHandlers.CreateCustomer)
	client.GET("/customers", customerHandlers.ListCustomers)
	client.GET("/customers/:id", customerHandlers.GetCustomer)
	client.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	client.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	orderIntakeLimit := middleware.RateLimit(cacheService, 60, time.Minute)
	client.POST("/orders", orderHandlers.CreateOrder, orderIntakeLimit)
	client.GET("/orders", orderHandlers.ListOrders)
	client.GET("/orders/:id", orderHandlers.GetOrder)
	client.PUT("/orders/:id/status", orderHandlers.UpdateOrderStatus)
	client.POST("/orders/:id/cancel", orderHandlers.CancelOrder)
	client.GET("/orders/:id/payments", paymentHandlers.ListOrderPayments)

	client.POST("/payments/paystack/initialize", paymentHandlers.InitializePaystack)
	client.GET("/payments/paystack/verify/:reference", paymentHandlers.VerifyPaystack)
	client.POST("/payments/mpesa/stk", paymentHandlers.InitiateMpesa)

	client.POST("/domains", domainHandlers.CreateDomain)
	client.GET("/domains", domainHandlers.ListDomains)
	client.POST("/domains/:id/verify", domainHandlers.VerifyDomain)
	client.DELETE("/domains/:id", domainHandlers.DeleteDomain)

	client.GET("/analytics/dashboard", analyticsHandlers.Dashboard)
	client.GET("/analytics/trends", analyticsHandlers.SalesTrends)
	client.GET("/analytics/sales-report", analyticsHandlers.SalesReport)

	client.GET("/activity", activityHandlers.ListActivity)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
