package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	nethttp "net/http"
	"time"

	"retail-backend/internal/auth"
	"retail-backend/internal/cache"
	"retail-backend/internal/config"
	"retail-backend/internal/database"
	"retail-backend/internal/db"
	"retail-backend/internal/fx"
	"retail-backend/internal/handlers"
	"retail-backend/internal/health"
	"retail-backend/internal/http"
	"retail-backend/internal/middleware"
	"retail-backend/internal/monitoring"
	"retail-backend/internal/repositories"
	"retail-backend/internal/services"
	"retail-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "override server port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional, the API degrades to uncached reads without it
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.NewMigrator(pool, migrations.FS).RunMigrations(migrateCtx); err != nil {
		log.Fatalf("[Migrate] %v", err)
	}

	// Exchange rates refresh in the background for the lifetime of the process
	fxProvider := fx.NewProvider()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go fxProvider.Start(ctx, time.Duration(cfg.Fx.RefreshMinutes)*time.Minute)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	supplierRepo := repositories.NewSupplierRepository(pool)
	saleRepo := repositories.NewSaleRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	reserveRepo := repositories.NewReserveRepository(pool)
	transactionRepo := repositories.NewTransactionRepository(pool)
	auditRepo := repositories.NewAuditRepository(pool)
	stockMovementRepo := repositories.NewStockMovementRepository(pool)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	postingService := services.NewPostingService(pool, customerRepo, transactionRepo, auditRepo)
	userService := services.NewUserService(userRepo, jwtManager)
	customerService := services.NewCustomerService(pool, customerRepo, transactionRepo, postingService)
	productService := services.NewProductService(pool, productRepo, stockMovementRepo)
	supplierService := services.NewSupplierService(supplierRepo)
	saleService := services.NewSaleService(pool, saleRepo, productRepo, stockMovementRepo, postingService)
	paymentService := services.NewPaymentService(pool, paymentRepo, postingService)
	reserveService := services.NewReserveService(pool, reserveRepo, saleRepo, paymentRepo,
		productRepo, stockMovementRepo, postingService)
	archiveService := services.NewArchiveService(cfg)
	reportService := services.NewReportService(saleRepo, customerRepo, productRepo, archiveService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	supplierHandler := handlers.NewSupplierHandler(supplierService, fxProvider)
	saleHandler := handlers.NewSaleHandler(saleService, fxProvider)
	paymentHandler := handlers.NewPaymentHandler(paymentService, fxProvider)
	reserveHandler := handlers.NewReserveHandler(reserveService, fxProvider)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, auditRepo)
	reportHandler := handlers.NewReportHandler(reportService, archiveService)
	ratesHandler := handlers.NewRatesHandler(fxProvider, jwtManager)
	monitoringHandler := handlers.NewMonitoringHandler(monitoring.NewCollector(pool))
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := http.NewRouter(
		authHandler,
		userHandler,
		customerHandler,
		productHandler,
		supplierHandler,
		saleHandler,
		paymentHandler,
		reserveHandler,
		transactionHandler,
		reportHandler,
		ratesHandler,
		monitoringHandler,
		healthHandler,
		authMiddleware,
	)

	corsHandler := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsHandler(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Listening on %s", addr)
	if err := nethttp.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("[Server] %v", err)
	}
}
