package handlers

import (
	"errors"
	"log"
	"strconv"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/services/report"
	"taxgate/internal/services/user"
	"taxgate/internal/utils"
	"taxgate/internal/utils/pagination"
	"taxgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the administrative review surface: the paid-invoice
// queue, approve/reject decisions, settlements and account management.
type AdminHandler struct {
	reportService  report.Service
	userService    user.Service
	reportRepo     repositories.TaxReportRepository
	invoiceRepo    repositories.InvoiceRepository
	settlementRepo repositories.SettlementRepository
}

func NewAdminHandler(
	reportService report.Service,
	userService user.Service,
	reportRepo repositories.TaxReportRepository,
	invoiceRepo repositories.InvoiceRepository,
	settlementRepo repositories.SettlementRepository,
) *AdminHandler {
	return &AdminHandler{
		reportService:  reportService,
		userService:    userService,
		reportRepo:     reportRepo,
		invoiceRepo:    invoiceRepo,
		settlementRepo: settlementRepo,
	}
}

// ReviewQueue lists paid invoices awaiting an approve/reject decision
func (h *AdminHandler) ReviewQueue(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	invoices, total, err := h.invoiceRepo.ListForReview(p.Offset, p.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to load review queue")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, invoices))
}

// ListReports lists reports across all banks, optionally filtered by status
func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	status := c.Query("status")

	reports, total, err := h.reportRepo.List(status, p.Offset, p.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to load reports")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, reports))
}

// Approve records an approval decision and triggers settlement
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	if err := h.reportService.Approve(c.Context(), claims.UserID, uint(invoiceID)); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvoiceNotFound):
			return response.NotFound(c, "Invoice not found")
		case errors.Is(err, report.ErrReviewNotAllowed):
			return response.Conflict(c, "Invoice is not reviewable in its current state")
		default:
			log.Printf("Approval failed for invoice %d: %v", invoiceID, err)
			return response.ServerError(c, "Failed to approve report")
		}
	}

	return response.Success(c, "Report approved", nil)
}

// Reject records a rejection with a mandatory reason
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	var req models.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.reportService.Reject(c.Context(), claims.UserID, uint(invoiceID), req.Reason); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvoiceNotFound):
			return response.NotFound(c, "Invoice not found")
		case errors.Is(err, report.ErrReasonRequired):
			return response.BadRequest(c, "A rejection reason is required")
		case errors.Is(err, report.ErrReviewNotAllowed):
			return response.Conflict(c, "Invoice is not reviewable in its current state")
		default:
			log.Printf("Rejection failed for invoice %d: %v", invoiceID, err)
			return response.ServerError(c, "Failed to reject report")
		}
	}

	return response.Success(c, "Report rejected", nil)
}

// ListSettlements lists settlements, newest first
func (h *AdminHandler) ListSettlements(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	settlements, total, err := h.settlementRepo.List(p.Offset, p.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to load settlements")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, settlements))
}

// ListUsers lists portal accounts, optionally filtered by role
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	role := c.Query("role")

	users, total, err := h.userService.List(role, p.Page, p.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to load users")
	}

	sanitized := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, fiber.Map{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"phone":     u.Phone,
			"role":      u.Role,
			"status":    u.Status,
			"bank_name": u.BankName,
			"bank_code": u.BankCode,
		})
	}

	p.Total = total
	return c.JSON(pagination.Response(p, sanitized))
}

// CreateUser provisions an account with any role
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	usr, err := h.userService.Register(&input)
	if err != nil {
		if ve, ok := user.IsValidationError(err); ok {
			return response.ValidationFailed(c, ve.Fields)
		}
		if errors.Is(err, user.ErrEmailTaken) {
			return response.Conflict(c, "An account with this email already exists")
		}
		return response.ServerError(c, "Failed to create account")
	}

	return response.Created(c, "Account created", fiber.Map{
		"id":    usr.ID,
		"email": usr.Email,
		"role":  usr.Role,
	})
}

// DeleteUser removes a portal account
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(uint(userID)); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted", nil)
}
