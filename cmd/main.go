package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/handlers"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/jobs/background"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/middleware"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/ops"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/pkg/database"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}
	redisClient := caching.NewRedisClient(redisAddr, redisPassword, redisDB)
	cacheSvc := caching.NewRedisCacheService(redisClient)

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	medicineRepo := repositories.NewMedicineRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	prescriptionRepo := repositories.NewPrescriptionRepo(pool)
	saleRepo := repositories.NewSaleRepo(pool)

	// Live event broadcaster
	broadcaster := broadcast.NewBroadcaster(tenantRepo, medicineRepo, broadcast.Config{})

	// Services
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)
	authSvc := services.NewAuthService(userRepo, tenantRepo, tenantSvc, cacheSvc, jwtSecret)
	medicineSvc := services.NewMedicineService(medicineRepo, cacheSvc, broadcaster)
	customerSvc := services.NewCustomerService(customerRepo)
	prescriptionSvc := services.NewPrescriptionService(prescriptionRepo, medicineRepo, storageSvc)
	saleSvc := services.NewSaleService(saleRepo, medicineRepo, broadcaster)
	reportSvc := services.NewReportService(saleRepo, medicineRepo, cacheSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	medicineHandlers := handlers.NewMedicineHandlers(medicineSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	prescriptionHandlers := handlers.NewPrescriptionHandlers(prescriptionSvc)
	saleHandlers := handlers.NewSaleHandlers(saleSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	monitorHandlers := handlers.NewMonitorHandlers(broadcaster)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	// Background jobs
	checker := ops.NewConsistencyChecker(tenantRepo, userRepo)
	scheduler := background.NewJobScheduler(medicineRepo, tenantRepo, reportSvc, cacheSvc, checker)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Live monitor stream. Authenticated by tenant subdomain only so the
	// dashboard widget can connect without a token exchange.
	v1.GET("/monitor/:subdomain/stream", monitorHandlers.Stream)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*middleware.JWTCustomClaims); ok {
				middleware.PropagateClaims(c, claims)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))

	// Tenant routes
	protected.GET("/tenants", tenantHandlers.ListTenants)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant)

	// Medicine routes
	protected.GET("/medicines", medicineHandlers.ListMedicines)
	protected.POST("/medicines", medicineHandlers.CreateMedicine)
	protected.GET("/medicines/search", medicineHandlers.SearchMedicines)
	protected.GET("/medicines/low-stock", medicineHandlers.LowStock)
	protected.GET("/medicines/barcode/:barcode", medicineHandlers.GetMedicineByBarcode)
	protected.GET("/medicines/:id", medicineHandlers.GetMedicine)
	protected.PATCH("/medicines/:id/stock", medicineHandlers.AdjustStock)
	protected.PUT("/medicines/:id", medicineHandlers.UpdateMedicine)
	protected.DELETE("/medicines/:id", medicineHandlers.DeleteMedicine)

	// Customer routes
	protected.GET("/customers", customerHandlers.ListCustomers)
	protected.POST("/customers", customerHandlers.CreateCustomer)
	protected.GET("/customers/:id", customerHandlers.GetCustomer)
	protected.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	protected.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	// Prescription routes
	protected.GET("/prescriptions", prescriptionHandlers.ListPrescriptions)
	protected.POST("/prescriptions", prescriptionHandlers.CreatePrescription)
	protected.GET("/prescriptions/:id", prescriptionHandlers.GetPrescription)
	protected.POST("/prescriptions/:id/dispense", prescriptionHandlers.DispensePrescription)
	protected.DELETE("/prescriptions/:id", prescriptionHandlers.DeletePrescription)
	protected.POST("/prescriptions/:id/document", prescriptionHandlers.UploadDocument)
	protected.GET("/prescriptions/:id/document", prescriptionHandlers.DocumentURL)

	// Sale routes
	protected.POST("/sales", saleHandlers.Checkout)
	protected.GET("/sales", saleHandlers.ListSales)
	protected.GET("/sales/:id", saleHandlers.GetSale)

	// Report routes
	protected.GET("/reports/sales/daily", reportHandlers.DailySales)
	protected.GET("/reports/sales/range", reportHandlers.SalesRange)
	protected.GET("/reports/inventory", reportHandlers.InventoryHealth)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Pharmacy server starting on port %d", port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
