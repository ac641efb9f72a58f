package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retail-backend/internal/handlers"
	"retail-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	productHandler *handlers.ProductHandler,
	supplierHandler *handlers.SupplierHandler,
	saleHandler *handlers.SaleHandler,
	paymentHandler *handlers.PaymentHandler,
	reserveHandler *handlers.ReserveHandler,
	transactionHandler *handlers.TransactionHandler,
	reportHandler *handlers.ReportHandler,
	ratesHandler *handlers.RatesHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireRole("admin"))
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("/{id}/active", userHandler.SetActive).Methods("PATCH")

	// Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(customerHandler.DeleteCustomer)).ServeHTTP).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/statement", customerHandler.Statement).Methods("GET")
	customersAPI.HandleFunc("/{id}/reconcile", customerHandler.Reconcile).Methods("GET")
	customersAPI.HandleFunc("/{id}/reconcile", authMiddleware.RequireRole("admin")(http.HandlerFunc(customerHandler.RepairBalance)).ServeHTTP).Methods("POST")

	// Products and categories
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.ListProducts).Methods("GET")
	productsAPI.HandleFunc("", productHandler.CreateProduct).Methods("POST")
	productsAPI.HandleFunc("/barcode", productHandler.GetByBarcode).Methods("GET")
	productsAPI.HandleFunc("/low-stock", productHandler.ListLowStock).Methods("GET")
	productsAPI.HandleFunc("/{id}", productHandler.GetProduct).Methods("GET")
	productsAPI.HandleFunc("/{id}", productHandler.UpdateProduct).Methods("PUT")
	productsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(productHandler.DeleteProduct)).ServeHTTP).Methods("DELETE")
	productsAPI.HandleFunc("/{id}/stock", productHandler.AdjustStock).Methods("POST")
	productsAPI.HandleFunc("/{id}/stock-history", productHandler.StockHistory).Methods("GET")
	productsAPI.HandleFunc("/{product_id}/suppliers", supplierHandler.ComparePrices).Methods("GET")

	categoriesAPI := r.PathPrefix("/api/categories").Subrouter()
	categoriesAPI.Use(authMiddleware.Authenticate)
	categoriesAPI.HandleFunc("", productHandler.ListCategories).Methods("GET")
	categoriesAPI.HandleFunc("", productHandler.CreateCategory).Methods("POST")
	categoriesAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(productHandler.DeleteCategory)).ServeHTTP).Methods("DELETE")

	// Suppliers
	suppliersAPI := r.PathPrefix("/api/suppliers").Subrouter()
	suppliersAPI.Use(authMiddleware.Authenticate)
	suppliersAPI.HandleFunc("", supplierHandler.ListSuppliers).Methods("GET")
	suppliersAPI.HandleFunc("", supplierHandler.CreateSupplier).Methods("POST")
	suppliersAPI.HandleFunc("/{id}", supplierHandler.GetSupplier).Methods("GET")
	suppliersAPI.HandleFunc("/{id}", supplierHandler.UpdateSupplier).Methods("PUT")
	suppliersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(supplierHandler.DeleteSupplier)).ServeHTTP).Methods("DELETE")
	suppliersAPI.HandleFunc("/{id}/products", supplierHandler.LinkProduct).Methods("POST")
	suppliersAPI.HandleFunc("/{id}/products/{product_id}", supplierHandler.UnlinkProduct).Methods("DELETE")

	// Sales and returns
	salesAPI := r.PathPrefix("/api/sales").Subrouter()
	salesAPI.Use(authMiddleware.Authenticate)
	salesAPI.HandleFunc("", saleHandler.ListSales).Methods("GET")
	salesAPI.HandleFunc("", saleHandler.CreateSale).Methods("POST")
	salesAPI.HandleFunc("/overdue", saleHandler.ListOverdue).Methods("GET")
	salesAPI.HandleFunc("/{id}", saleHandler.GetSale).Methods("GET")
	salesAPI.HandleFunc("/{id}/returns", saleHandler.ProcessReturn).Methods("POST")

	// Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.ListByCustomer).Methods("GET")
	paymentsAPI.HandleFunc("", paymentHandler.CreatePayment).Methods("POST")

	// Reserves
	reservesAPI := r.PathPrefix("/api/reserves").Subrouter()
	reservesAPI.Use(authMiddleware.Authenticate)
	reservesAPI.HandleFunc("", reserveHandler.ListReserves).Methods("GET")
	reservesAPI.HandleFunc("", reserveHandler.CreateReserve).Methods("POST")
	reservesAPI.HandleFunc("/{id}", reserveHandler.GetReserve).Methods("GET")
	reservesAPI.HandleFunc("/{id}/convert", reserveHandler.Convert).Methods("POST")
	reservesAPI.HandleFunc("/{id}/cancel", reserveHandler.Cancel).Methods("POST")

	// Ledger audit views
	transactionsAPI := r.PathPrefix("/api/transactions").Subrouter()
	transactionsAPI.Use(authMiddleware.Authenticate)
	transactionsAPI.HandleFunc("", transactionHandler.ListTransactions).Methods("GET")
	transactionsAPI.HandleFunc("/audits", transactionHandler.ListAudits).Methods("GET")

	// Reports (admin and accountant)
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.RequireRole("admin", "accountant"))
	reportsAPI.HandleFunc("/daily-sales", reportHandler.DailySales).Methods("GET")
	reportsAPI.HandleFunc("/customer-balances", reportHandler.CustomerBalances).Methods("GET")
	reportsAPI.HandleFunc("/stock", reportHandler.Stock).Methods("GET")
	reportsAPI.HandleFunc("/archive", reportHandler.ListArchive).Methods("GET")

	// Exchange rates: table is public to authenticated users, refresh is not
	ratesAPI := r.PathPrefix("/api/rates").Subrouter()
	ratesAPI.Use(authMiddleware.Authenticate)
	ratesAPI.HandleFunc("", ratesHandler.GetRates).Methods("GET")
	ratesAPI.HandleFunc("/refresh", ratesHandler.Refresh).Methods("POST")

	// Websocket rate push; the handshake cannot carry an Authorization header
	// from a browser, so Subscribe validates a token query param itself
	r.HandleFunc("/ws/rates", ratesHandler.Subscribe)

	// Monitoring
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.RequireRole("admin"))
	monitoringAPI.HandleFunc("/stats", monitoringHandler.Stats).Methods("GET")

	// Health checks (public, used by probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}
