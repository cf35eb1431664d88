// Package settlement attributes the funds of approved invoices to the
// government ledger. Creation happens synchronously inside the approval
// transition and at most once per invoice.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
)

// ReferencePrefix starts every settlement reference.
const ReferencePrefix = "STL"

var ErrInvoiceNotApproved = errors.New("invoice is not approved")

// Store is the subset of repository operations the service needs.
type Store interface {
	Create(settlement *models.Settlement) error
	GetByInvoiceID(invoiceID uint) (*models.Settlement, error)
}

// PaymentLookup finds the originating payment record for an invoice.
type PaymentLookup interface {
	GetLatestForInvoice(bankID, invoiceID uint) (*models.TaxPayment, error)
}

type Service interface {
	// CreateForApproval records a settlement for a freshly approved invoice.
	// Calling it again for the same invoice returns the existing record.
	CreateForApproval(ctx context.Context, report *models.TaxReport, invoice *models.Invoice, reviewerID uint, now time.Time) (*models.Settlement, error)
}

type service struct {
	store    Store
	payments PaymentLookup
}

// NewService creates a new settlement service
func NewService(store Store, payments PaymentLookup) Service {
	if store == nil {
		panic("store is required")
	}
	if payments == nil {
		panic("payments is required")
	}
	return &service{store: store, payments: payments}
}

func (s *service) CreateForApproval(ctx context.Context, report *models.TaxReport, invoice *models.Invoice, reviewerID uint, now time.Time) (*models.Settlement, error) {
	if invoice.InvestigationStatus != models.InvestigationApproved {
		return nil, ErrInvoiceNotApproved
	}

	// Re-approval of an already settled invoice must not duplicate funds.
	if existing, err := s.store.GetByInvoiceID(invoice.ID); err == nil {
		return existing, nil
	}

	settlement := &models.Settlement{
		Reference:   GenerateReference(now),
		TaxReportID: report.ID,
		InvoiceID:   invoice.ID,
		BankID:      invoice.BankID,
		Amount:      invoice.TaxAmount,
		Currency:    invoice.Currency,
		CreatedByID: reviewerID,
	}

	// Link the originating payment when one can be found. A missing payment
	// record is tolerated; the amount comes from the invoice either way.
	payment, err := s.payments.GetLatestForInvoice(invoice.BankID, invoice.ID)
	if err == nil {
		settlement.TaxPaymentID = &payment.ID
	} else if err != repositories.ErrPaymentNotFound {
		log.Printf("Settlement payment lookup failed for invoice %d: %v", invoice.ID, err)
	}

	if err := s.store.Create(settlement); err != nil {
		if err == repositories.ErrSettlementExists {
			return s.store.GetByInvoiceID(invoice.ID)
		}
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return settlement, nil
}

// GenerateReference builds a settlement reference: prefix, year and month of
// creation, and a random five digit suffix. No global sequence is kept; the
// collision probability at this volume is accepted.
func GenerateReference(now time.Time) string {
	return fmt.Sprintf("%s-%d%02d-%05d", ReferencePrefix, now.Year(), int(now.Month()), rand.Intn(100000))
}
