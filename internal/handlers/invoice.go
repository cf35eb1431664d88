package handlers

import (
	"errors"
	"strconv"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/utils"
	"taxgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	invoiceRepo repositories.InvoiceRepository
}

func NewInvoiceHandler(invoiceRepo repositories.InvoiceRepository) *InvoiceHandler {
	return &InvoiceHandler{invoiceRepo: invoiceRepo}
}

// List returns the bank's invoices, newest first
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	invoices, err := h.invoiceRepo.ListByBank(claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to load invoices")
	}

	return response.Success(c, "Invoices", invoices)
}

// Get returns a single invoice, enforcing ownership for bank accounts
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	invoice, err := h.invoiceRepo.GetByID(uint(invoiceID))
	if err != nil {
		if errors.Is(err, repositories.ErrInvoiceNotFound) {
			return response.NotFound(c, "Invoice not found")
		}
		return response.ServerError(c, "Failed to load invoice")
	}

	if claims.Role == models.RoleBank && invoice.BankID != claims.UserID {
		return response.Forbidden(c, "Invoice belongs to another bank")
	}

	return response.Success(c, "Invoice", invoice)
}
