package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/services/period"
	"taxgate/internal/services/reconcile"
	"taxgate/internal/services/submission"
	"taxgate/internal/validation"

	"github.com/shopspring/decimal"
)

type service struct {
	reports     ReportStore
	invoices    InvoiceStore
	payments    PaymentSummer
	settlements SettlementTrigger
	agents      AgentCounter
	cache       OverviewCache
	now         func() time.Time
}

// NewService creates a new tax report service. The cache is optional; a nil
// cache means every overview is computed from the store.
func NewService(reports ReportStore, invoices InvoiceStore, payments PaymentSummer, settlements SettlementTrigger, agents AgentCounter, cache OverviewCache) Service {
	if reports == nil {
		panic("reports store is required")
	}
	if invoices == nil {
		panic("invoices store is required")
	}
	if payments == nil {
		panic("payments store is required")
	}
	if settlements == nil {
		panic("settlement trigger is required")
	}
	if agents == nil {
		panic("agent counter is required")
	}

	return &service{
		reports:     reports,
		invoices:    invoices,
		payments:    payments,
		settlements: settlements,
		agents:      agents,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *service) Submit(ctx context.Context, bank *models.User, req models.SubmitReportRequest) (*models.TaxReport, *models.Invoice, error) {
	volume, profit, err := s.validateFigures(req.TransactionVolume, req.ProfitBaseline, req.ConfirmAccuracy, req.DocumentURL, true)
	if err != nil {
		return nil, nil, err
	}
	if err := validatePeriod(req.Month, req.Year, s.now()); err != nil {
		return nil, nil, err
	}

	// A period may only carry one report lineage. Pending or approved filings
	// block outright; a rejected one must go through Revise instead. A failed
	// lookup blocks too: proceeding on an unknown prior state could file a
	// duplicate.
	existing, lookupErr := s.reports.GetByBankAndPeriod(bank.ID, req.Month, req.Year)
	switch {
	case lookupErr == nil && existing.Active():
		return nil, nil, ErrAlreadySubmitted
	case lookupErr == nil:
		return nil, nil, ErrMustRevise
	case !errors.Is(lookupErr, repositories.ErrReportNotFound):
		return nil, nil, fmt.Errorf("failed to check for a prior report: %w", lookupErr)
	}

	now := s.now()
	taxAmount := reconcile.ComputeTax(volume, profit)

	report := &models.TaxReport{
		BankID:            bank.ID,
		Month:             req.Month,
		Year:              req.Year,
		TransactionVolume: volume,
		ProfitBaseline:    profit,
		Notes:             req.Notes,
		Status:            models.ReportStatusPending,
		RevisionCount:     0,
		DocumentURL:       req.DocumentURL,
		DocumentName:      req.DocumentName,
		SubmittedAt:       now,
	}

	invoice := &models.Invoice{
		InvoiceNumber:         generateInvoiceNumber(now),
		BankID:                bank.ID,
		TaxRate:               reconcile.TaxRate,
		TaxAmount:             taxAmount,
		PreviousPaymentAmount: decimal.Zero,
		AdditionalTaxAmount:   taxAmount,
		PaymentStatus:         models.PaymentStatusPending,
		InvestigationStatus:   models.InvestigationPendingReview,
	}

	if err := s.reports.CreateWithInvoice(report, invoice); err != nil {
		return nil, nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, invoice, nil
}

func (s *service) Revise(ctx context.Context, bankID, reportID uint, req models.ReviseReportRequest) (*models.TaxReport, *models.Invoice, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, nil, err
	}
	if report.BankID != bankID {
		return nil, nil, ErrNotReportOwner
	}
	if report.Status != models.ReportStatusRejected {
		return nil, nil, ErrNotEligibleForRevision
	}

	// The prior document carries over when no replacement is supplied.
	hasDocument := req.DocumentURL != "" || report.DocumentURL != ""
	volume, profit, err := s.validateFigures(req.TransactionVolume, req.ProfitBaseline, req.ConfirmAccuracy, req.DocumentURL, !hasDocument)
	if err != nil {
		return nil, nil, err
	}

	invoice, err := s.invoices.GetByReportID(report.ID)
	if err != nil {
		return nil, nil, err
	}

	alreadyPaid, err := s.payments.SumSuccessfulForInvoice(invoice.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum prior payments: %w", err)
	}

	now := s.now()
	report.TransactionVolume = volume
	report.ProfitBaseline = profit
	report.Notes = req.Notes
	report.Status = models.ReportStatusPending
	report.RevisionCount++
	report.RejectionReason = ""
	report.ResubmittedAt = &now
	if req.DocumentURL != "" {
		report.DocumentURL = req.DocumentURL
		report.DocumentName = req.DocumentName
	}

	taxAmount := reconcile.ComputeTax(volume, profit)
	invoice.TaxAmount = taxAmount
	invoice.PreviousPaymentAmount = alreadyPaid
	invoice.AdditionalTaxAmount = reconcile.AdditionalDue(taxAmount, alreadyPaid)
	invoice.InvestigationStatus = models.InvestigationPendingReview
	invoice.RejectionReason = ""
	invoice.ReviewerID = nil
	invoice.ReviewedAt = nil

	// Prior collections that already cover the revised liability leave
	// nothing to pay; otherwise the invoice reopens for the delta.
	if invoice.AdditionalTaxAmount.IsZero() && alreadyPaid.IsPositive() {
		invoice.PaymentStatus = models.PaymentStatusSuccess
	} else {
		invoice.PaymentStatus = models.PaymentStatusPending
	}

	if err := s.reports.UpdateWithInvoice(report, invoice); err != nil {
		return nil, nil, fmt.Errorf("failed to save revision: %w", err)
	}

	return report, invoice, nil
}

func (s *service) Approve(ctx context.Context, reviewerID, invoiceID uint) error {
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if !invoice.Paid() || !invoice.Reviewable() {
		return ErrReviewNotAllowed
	}

	report, err := s.reports.GetByID(invoice.TaxReportID)
	if err != nil {
		return err
	}

	now := s.now()
	report.Status = models.ReportStatusApproved
	invoice.InvestigationStatus = models.InvestigationApproved
	invoice.ReviewerID = &reviewerID
	invoice.ReviewedAt = &now

	if err := s.reports.UpdateWithInvoice(report, invoice); err != nil {
		return fmt.Errorf("failed to approve report: %w", err)
	}

	// Approval is authoritative once the status change commits. A settlement
	// failure is logged, never propagated.
	if _, err := s.settlements.CreateForApproval(ctx, report, invoice, reviewerID, now); err != nil {
		log.Printf("Settlement creation failed for invoice %d: %v", invoice.ID, err)
	}

	return nil
}

func (s *service) Reject(ctx context.Context, reviewerID, invoiceID uint, reason string) error {
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if !invoice.Paid() || !invoice.Reviewable() {
		return ErrReviewNotAllowed
	}
	if reason == "" {
		return ErrReasonRequired
	}

	report, err := s.reports.GetByID(invoice.TaxReportID)
	if err != nil {
		return err
	}

	now := s.now()
	report.Status = models.ReportStatusRejected
	report.RejectionReason = reason
	invoice.InvestigationStatus = models.InvestigationRejected
	invoice.RejectionReason = reason
	invoice.ReviewerID = &reviewerID
	invoice.ReviewedAt = &now

	if err := s.reports.UpdateWithInvoice(report, invoice); err != nil {
		return fmt.Errorf("failed to reject report: %w", err)
	}

	return nil
}

func (s *service) Overview(ctx context.Context, bank *models.User) (*Overview, error) {
	if s.cache != nil {
		var cached Overview
		if found, err := s.cache.GetSubmissionStatus(ctx, bank.ID, &cached); err == nil && found {
			return &cached, nil
		}
	}

	reports, err := s.reports.ListByBank(bank.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report history: %w", err)
	}

	now := s.now()
	createdAt := &bank.CreatedAt

	current := period.Current(now)
	overview := &Overview{
		Current:        current,
		Status:         submission.ForPeriod(reports, current),
		MissingPeriods: period.Missing(createdAt, now, reports),
		History:        submission.History(reports, period.Range(createdAt, now)),
	}

	count, err := s.agents.CountActiveByBank(bank.ID)
	if err != nil {
		log.Printf("Agent count lookup failed for bank %d: %v", bank.ID, err)
	} else {
		overview.ActiveAgents = count
	}

	if s.cache != nil {
		if err := s.cache.CacheSubmissionStatus(ctx, bank.ID, overview); err != nil {
			log.Printf("Failed to cache submission overview for bank %d: %v", bank.ID, err)
		}
	}

	return overview, nil
}

func (s *service) ListByBank(ctx context.Context, bankID uint) ([]models.TaxReport, error) {
	return s.reports.ListByBank(bankID)
}

// validateFigures parses and checks the declared figures. requireDocument is
// true on first submission and on revisions without a carried-over document.
func (s *service) validateFigures(volumeStr, profitStr string, confirmed bool, documentURL string, requireDocument bool) (decimal.Decimal, decimal.Decimal, error) {
	v := validation.New()

	volume, volErr := decimal.NewFromString(volumeStr)
	if volumeStr == "" || volErr != nil {
		v.AddError("transaction_volume", "must be a number")
	} else if volume.IsNegative() {
		v.AddError("transaction_volume", "must not be negative")
	}

	profit, profErr := decimal.NewFromString(profitStr)
	if profitStr == "" || profErr != nil {
		v.AddError("profit_baseline", "must be a number")
	} else if profit.IsNegative() || profit.GreaterThan(decimal.NewFromInt(100)) {
		v.AddError("profit_baseline", "must be between 0 and 100")
	}

	if !confirmed {
		v.AddError("confirm_accuracy", "accuracy must be confirmed")
	}
	if requireDocument && documentURL == "" {
		v.AddError("document", "a supporting document is required")
	}

	if !v.Valid() {
		return decimal.Zero, decimal.Zero, &ValidationError{Fields: v.Errors}
	}
	return volume, profit, nil
}

// validatePeriod rejects malformed or future periods. Reports are filed for
// months already underway or past, never ahead of the calendar.
func validatePeriod(month, year int, now time.Time) error {
	v := validation.New()
	if month < 0 || month > 11 {
		v.AddError("month", "must be between 0 and 11")
	}
	if year < 2000 || year > now.Year() {
		v.AddError("year", "is out of range")
	}
	if v.Valid() && period.Current(now).Before(period.New(month, year)) {
		v.AddError("period", "cannot report a future period")
	}
	if !v.Valid() {
		return &ValidationError{Fields: v.Errors}
	}
	return nil
}

func generateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d%02d-%05d", now.Year(), int(now.Month()), rand.Intn(100000))
}
