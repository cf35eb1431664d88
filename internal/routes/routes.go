// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"context"
	"log"

	"taxgate/internal/handlers"
	"taxgate/internal/middleware"
	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/services/auth"
	"taxgate/internal/services/payment"
	"taxgate/internal/services/report"
	"taxgate/internal/services/settlement"
	"taxgate/internal/services/storage"
	"taxgate/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	reportRepo := repositories.NewTaxReportRepository(repositories.DB, repositories.CacheService)
	invoiceRepo := repositories.NewInvoiceRepository(repositories.DB)
	paymentRepo := repositories.NewTaxPaymentRepository(repositories.DB)
	settlementRepo := repositories.NewSettlementRepository(repositories.DB)
	agentRepo := repositories.NewPOSAgentRepository(repositories.DB)

	// Initialize services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	settlementService := settlement.NewService(settlementRepo, paymentRepo)
	reportService := report.NewService(reportRepo, invoiceRepo, paymentRepo, settlementService, agentRepo, repositories.CacheService)
	paymentService := payment.NewService(invoiceRepo, paymentRepo)

	// Object storage is optional; the portal runs without document upload.
	storageService, err := storage.NewFromEnv(context.Background())
	if err != nil {
		log.Printf("Document storage disabled: %v", err)
		storageService = nil
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	reportHandler := handlers.NewReportHandler(reportService, userRepo, storageService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	agentHandler := handlers.NewAgentHandler(agentRepo)
	adminHandler := handlers.NewAdminHandler(reportService, userService, reportRepo, invoiceRepo, settlementRepo)

	// Health check at the root
	app.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TaxGate API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/login", authHandler.Login)
	api.Post("/register", userHandler.Register)
	api.Post("/refresh", authHandler.Refresh)
	api.Post("/payments/callback", paymentHandler.Callback)

	// Create middleware instance
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Protected routes with auth middleware
	protected := api.Use(authMiddleware.Handler)

	setupAccountRoutes(protected, authHandler, userHandler)
	setupBankRoutes(protected, reportHandler, invoiceHandler, paymentHandler, agentHandler)
	setupOversightRoutes(protected, adminHandler)
	setupAdminRoutes(protected, adminHandler)
}

func setupAccountRoutes(router fiber.Router, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler) {
	router.Get("/profile", userHandler.Profile)
	router.Post("/change-password", middleware.HasPermission(models.PermissionChangePassword), authHandler.ChangePassword)
	router.Post("/logout", authHandler.Logout)
}

func setupBankRoutes(router fiber.Router, reportHandler *handlers.ReportHandler, invoiceHandler *handlers.InvoiceHandler, paymentHandler *handlers.PaymentHandler, agentHandler *handlers.AgentHandler) {
	// Report lifecycle
	reports := router.Group("/reports")
	reports.Get("/overview", middleware.HasPermission(models.PermissionReportRead), reportHandler.Overview)
	reports.Get("/", middleware.HasPermission(models.PermissionReportRead), reportHandler.List)
	reports.Post("/", middleware.HasPermission(models.PermissionReportSubmit), reportHandler.Submit)
	reports.Put("/:id/revise", middleware.HasPermission(models.PermissionReportSubmit), reportHandler.Revise)
	reports.Post("/documents", middleware.HasPermission(models.PermissionReportSubmit), reportHandler.UploadDocument)

	// Invoices and payments
	invoices := router.Group("/invoices")
	invoices.Get("/", middleware.HasPermission(models.PermissionInvoiceRead), invoiceHandler.List)
	invoices.Get("/:id", middleware.HasPermission(models.PermissionInvoiceRead), invoiceHandler.Get)
	invoices.Post("/:id/pay", middleware.HasPermission(models.PermissionInvoicePay), paymentHandler.Initialize)

	// POS agents
	agents := router.Group("/agents")
	agents.Get("/", middleware.HasPermission(models.PermissionAgentRead), agentHandler.List)
	agents.Post("/", middleware.HasPermission(models.PermissionAgentWrite), agentHandler.Register)
	agents.Put("/:id/deactivate", middleware.HasPermission(models.PermissionAgentWrite), agentHandler.Deactivate)
}

// setupOversightRoutes serves the read-only government view.
func setupOversightRoutes(router fiber.Router, adminHandler *handlers.AdminHandler) {
	oversight := router.Group("/oversight", middleware.RequireRole(models.RoleGovernment))
	oversight.Get("/reports", middleware.HasPermission(models.PermissionReportRead), adminHandler.ListReports)
	oversight.Get("/settlements", middleware.HasPermission(models.PermissionSettlementRead), adminHandler.ListSettlements)
}

func setupAdminRoutes(router fiber.Router, adminHandler *handlers.AdminHandler) {
	admin := router.Group("/admin", middleware.RequireRole(models.RoleAdmin))

	admin.Get("/review-queue", middleware.HasPermission(models.PermissionReportReview), adminHandler.ReviewQueue)
	admin.Get("/reports", middleware.HasPermission(models.PermissionReportReview), adminHandler.ListReports)
	admin.Post("/invoices/:id/approve", middleware.HasPermission(models.PermissionReportReview), adminHandler.Approve)
	admin.Post("/invoices/:id/reject", middleware.HasPermission(models.PermissionReportReview), adminHandler.Reject)
	admin.Get("/settlements", middleware.HasPermission(models.PermissionSettlementRead), adminHandler.ListSettlements)
	admin.Get("/users", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.ListUsers)
	admin.Post("/users", middleware.HasPermission(models.PermissionWriteAdmin), adminHandler.CreateUser)
	admin.Delete("/users/:id", middleware.HasPermission(models.PermissionWriteAdmin), adminHandler.DeleteUser)
}
