package handlers

import (
	"errors"
	"log"
	"strconv"

	"taxgate/internal/repositories"
	"taxgate/internal/services/payment"
	"taxgate/internal/utils"
	"taxgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService payment.Service
}

func NewPaymentHandler(paymentService payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Initialize creates a checkout session for an invoice's outstanding
// amount and returns the gateway redirect URL
func (h *PaymentHandler) Initialize(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	result, err := h.paymentService.Initialize(c.Context(), claims.UserID, uint(invoiceID))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvoiceNotFound):
			return response.NotFound(c, "Invoice not found")
		case errors.Is(err, payment.ErrNotInvoiceOwner):
			return response.Forbidden(c, "Invoice belongs to another bank")
		case errors.Is(err, payment.ErrAlreadyPaid):
			return response.Conflict(c, "Invoice is already settled")
		case errors.Is(err, payment.ErrNothingToPay):
			return response.Conflict(c, "Invoice has no outstanding amount")
		default:
			log.Printf("Payment initialization failed for invoice %d: %v", invoiceID, err)
			return response.ServerError(c, "Failed to initialize payment")
		}
	}

	return response.Success(c, "Payment initialized", result)
}

// Callback consumes the gateway's asynchronous payment result. The
// endpoint is public; the reference is the only credential and an
// unknown one is rejected.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var input struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Reference == "" {
		return response.BadRequest(c, "Payment reference is required")
	}

	if err := h.paymentService.HandleCallback(c.Context(), input.Reference, input.Status); err != nil {
		if errors.Is(err, payment.ErrUnknownReference) {
			return response.NotFound(c, "Unknown payment reference")
		}
		log.Printf("Payment callback failed for reference %s: %v", input.Reference, err)
		return response.ServerError(c, "Failed to process payment result")
	}

	return response.Success(c, "Payment result recorded", nil)
}
