// Package payment drives invoice collection through the hosted payment
// gateway. The gateway is a black box: we hand it an amount and a reference,
// get a redirect URL back, and consume its callback to settle the invoice's
// payment status.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxgate/internal/config"
	"taxgate/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
)

var (
	ErrNotInvoiceOwner  = errors.New("invoice does not belong to the requesting bank")
	ErrNothingToPay     = errors.New("invoice has no outstanding amount")
	ErrAlreadyPaid      = errors.New("invoice is already paid")
	ErrUnknownReference = errors.New("unknown payment reference")
)

// InvoiceStore is the invoice access the service needs.
type InvoiceStore interface {
	GetByID(id uint) (*models.Invoice, error)
	Update(invoice *models.Invoice) error
}

// PaymentStore persists gateway payment records.
type PaymentStore interface {
	Create(payment *models.TaxPayment) error
	GetByReference(reference string) (*models.TaxPayment, error)
	Update(payment *models.TaxPayment) error
}

// InitializeResult is returned to the caller for the browser redirect.
type InitializeResult struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}

type Service interface {
	// Initialize creates a payment record for the invoice's outstanding
	// amount and returns the gateway redirect URL.
	Initialize(ctx context.Context, bankID, invoiceID uint) (*InitializeResult, error)

	// HandleCallback consumes the gateway's asynchronous payment result.
	HandleCallback(ctx context.Context, reference, status string) error
}

// sessionCreator wraps gateway session creation so tests can stub it out.
type sessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type service struct {
	invoices      InvoiceStore
	payments      PaymentStore
	createSession sessionCreator
	now           func() time.Time
}

// NewService creates a new payment service
func NewService(invoices InvoiceStore, payments PaymentStore) Service {
	if invoices == nil {
		panic("invoices store is required")
	}
	if payments == nil {
		panic("payments store is required")
	}

	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")

	return &service{
		invoices:      invoices,
		payments:      payments,
		createSession: session.New,
		now:           time.Now,
	}
}

func (s *service) Initialize(ctx context.Context, bankID, invoiceID uint) (*InitializeResult, error) {
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.BankID != bankID {
		return nil, ErrNotInvoiceOwner
	}
	if invoice.Paid() {
		return nil, ErrAlreadyPaid
	}
	if !invoice.AdditionalTaxAmount.IsPositive() {
		return nil, ErrNothingToPay
	}

	reference := uuid.NewString()
	amount := invoice.AdditionalTaxAmount

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(reference),
		SuccessURL:        stripe.String(config.GetEnv("PAYMENT_SUCCESS_URL", "http://localhost:5173/payments/success")),
		CancelURL:         stripe.String(config.GetEnv("PAYMENT_CANCEL_URL", "http://localhost:5173/payments/cancelled")),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("ngn"),
				UnitAmount: stripe.Int64(amount.Mul(hundred).IntPart()), // kobo
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("Tax invoice %s", invoice.InvoiceNumber)),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}

	checkout, err := s.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("gateway initialization failed: %w", err)
	}

	record := &models.TaxPayment{
		InvoiceID:        invoice.ID,
		TaxReportID:      invoice.TaxReportID,
		BankID:           invoice.BankID,
		Amount:           amount,
		Currency:         invoice.Currency,
		Reference:        reference,
		GatewaySessionID: checkout.ID,
		Status:           models.PaymentStatusPending,
	}
	if err := s.payments.Create(record); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	invoice.PaymentStatus = models.PaymentStatusLinkGenerated
	if err := s.invoices.Update(invoice); err != nil {
		return nil, fmt.Errorf("failed to mark invoice: %w", err)
	}

	return &InitializeResult{Reference: reference, RedirectURL: checkout.URL}, nil
}

func (s *service) HandleCallback(ctx context.Context, reference, status string) error {
	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return ErrUnknownReference
	}

	// Gateway retries replay the same terminal result; only the first one
	// mutates anything.
	if payment.Status == models.PaymentStatusSuccess {
		return nil
	}

	switch status {
	case models.PaymentStatusSuccess:
		now := s.now()
		payment.Status = models.PaymentStatusSuccess
		payment.PaidAt = &now
	case models.PaymentStatusProcessing:
		payment.Status = models.PaymentStatusProcessing
	default:
		payment.Status = models.PaymentStatusFailed
	}

	// Keep the raw gateway verdict alongside our derived status; the gateway's
	// vocabulary is wider than ours and disputes get resolved against it.
	payment.Metadata = models.JSON{
		"gateway_status": status,
		"received_at":    s.now().UTC().Format(time.RFC3339),
	}

	if err := s.payments.Update(payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	invoice, err := s.invoices.GetByID(payment.InvoiceID)
	if err != nil {
		return err
	}
	invoice.PaymentStatus = payment.Status
	if err := s.invoices.Update(invoice); err != nil {
		return fmt.Errorf("failed to update invoice payment status: %w", err)
	}

	return nil
}

// hundred converts naira to kobo for the gateway's minor-unit amounts.
var hundred = decimal.NewFromInt(100)
