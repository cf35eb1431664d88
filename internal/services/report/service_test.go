package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"taxgate/internal/models"
	"taxgate/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReports struct {
	mock.Mock
}

func (m *MockReports) GetByID(id uint) (*models.TaxReport, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxReport), args.Error(1)
}

func (m *MockReports) GetByBankAndPeriod(bankID uint, month, year int) (*models.TaxReport, error) {
	args := m.Called(bankID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxReport), args.Error(1)
}

func (m *MockReports) ListByBank(bankID uint) ([]models.TaxReport, error) {
	args := m.Called(bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaxReport), args.Error(1)
}

func (m *MockReports) CreateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error {
	args := m.Called(report, invoice)
	return args.Error(0)
}

func (m *MockReports) UpdateWithInvoice(report *models.TaxReport, invoice *models.Invoice) error {
	args := m.Called(report, invoice)
	return args.Error(0)
}

type MockInvoices struct {
	mock.Mock
}

func (m *MockInvoices) GetByID(id uint) (*models.Invoice, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoices) GetByReportID(reportID uint) (*models.Invoice, error) {
	args := m.Called(reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) SumSuccessfulForInvoice(invoiceID uint) (decimal.Decimal, error) {
	args := m.Called(invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockSettlements struct {
	mock.Mock
}

func (m *MockSettlements) CreateForApproval(ctx context.Context, report *models.TaxReport, invoice *models.Invoice, reviewerID uint, now time.Time) (*models.Settlement, error) {
	args := m.Called(report, invoice, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settlement), args.Error(1)
}

type MockAgents struct {
	mock.Mock
}

func (m *MockAgents) CountActiveByBank(bankID uint) (int64, error) {
	args := m.Called(bankID)
	return args.Get(0).(int64), args.Error(1)
}

type MockOverviewCache struct {
	mock.Mock
}

func (m *MockOverviewCache) GetSubmissionStatus(ctx context.Context, bankID uint, dest interface{}) (bool, error) {
	args := m.Called(ctx, bankID, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockOverviewCache) CacheSubmissionStatus(ctx context.Context, bankID uint, status interface{}) error {
	args := m.Called(ctx, bankID, status)
	return args.Error(0)
}

type fixture struct {
	reports     *MockReports
	invoices    *MockInvoices
	payments    *MockPayments
	settlements *MockSettlements
	agents      *MockAgents
	svc         *service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reports:     new(MockReports),
		invoices:    new(MockInvoices),
		payments:    new(MockPayments),
		settlements: new(MockSettlements),
		agents:      new(MockAgents),
	}
	f.svc = NewService(f.reports, f.invoices, f.payments, f.settlements, f.agents, nil).(*service)
	f.svc.now = func() time.Time {
		return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	}
	return f
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func bankUser(id uint) *models.User {
	u := &models.User{Role: models.RoleBank, BankName: "First Bank"}
	u.ID = id
	return u
}

func submitRequest() models.SubmitReportRequest {
	return models.SubmitReportRequest{
		Month:             2, // March 2024
		Year:              2024,
		TransactionVolume: "10000000",
		ProfitBaseline:    "20",
		DocumentURL:       "https://files.example.com/reports/march.pdf",
		DocumentName:      "march.pdf",
		ConfirmAccuracy:   true,
	}
}

func TestSubmit(t *testing.T) {
	t.Run("first submission creates report and invoice", func(t *testing.T) {
		f := newFixture(t)
		f.reports.On("GetByBankAndPeriod", uint(1), 2, 2024).
			Return(nil, repositories.ErrReportNotFound)
		f.reports.On("CreateWithInvoice", mock.Anything, mock.Anything).Return(nil)

		report, invoice, err := f.svc.Submit(context.Background(), bankUser(1), submitRequest())

		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusPending, report.Status)
		assert.Equal(t, 0, report.RevisionCount)
		assert.Equal(t, 2, report.Month)
		assert.Equal(t, 2024, report.Year)

		// 10,000,000 x 20% x 5% = 100,000
		assert.True(t, dec("100000").Equal(invoice.TaxAmount), "tax amount %s", invoice.TaxAmount)
		assert.True(t, invoice.PreviousPaymentAmount.IsZero())
		assert.True(t, dec("100000").Equal(invoice.AdditionalTaxAmount))
		assert.Equal(t, models.PaymentStatusPending, invoice.PaymentStatus)
		assert.Equal(t, models.InvestigationPendingReview, invoice.InvestigationStatus)
		assert.NotEmpty(t, invoice.InvoiceNumber)
		f.reports.AssertExpectations(t)
	})

	t.Run("pending report for the period blocks a duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.reports.On("GetByBankAndPeriod", uint(1), 2, 2024).
			Return(&models.TaxReport{Status: models.ReportStatusPending}, nil)

		_, _, err := f.svc.Submit(context.Background(), bankUser(1), submitRequest())

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		f.reports.AssertNotCalled(t, "CreateWithInvoice")
	})

	t.Run("failed prior-report lookup blocks the submission", func(t *testing.T) {
		f := newFixture(t)
		f.reports.On("GetByBankAndPeriod", uint(1), 2, 2024).
			Return(nil, errors.New("connection reset by peer"))

		_, _, err := f.svc.Submit(context.Background(), bankUser(1), submitRequest())

		require.Error(t, err)
		f.reports.AssertNotCalled(t, "CreateWithInvoice")
	})

	t.Run("rejected report for the period requires a revision", func(t *testing.T) {
		f := newFixture(t)
		f.reports.On("GetByBankAndPeriod", uint(1), 2, 2024).
			Return(&models.TaxReport{Status: models.ReportStatusRejected}, nil)

		_, _, err := f.svc.Submit(context.Background(), bankUser(1), submitRequest())

		assert.ErrorIs(t, err, ErrMustRevise)
		f.reports.AssertNotCalled(t, "CreateWithInvoice")
	})

	t.Run("validation failures block any write", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.SubmitReportRequest)
			field  string
		}{
			{"blank volume", func(r *models.SubmitReportRequest) { r.TransactionVolume = "" }, "transaction_volume"},
			{"non numeric volume", func(r *models.SubmitReportRequest) { r.TransactionVolume = "ten million" }, "transaction_volume"},
			{"negative volume", func(r *models.SubmitReportRequest) { r.TransactionVolume = "-5" }, "transaction_volume"},
			{"non numeric profit", func(r *models.SubmitReportRequest) { r.ProfitBaseline = "lots" }, "profit_baseline"},
			{"profit above hundred", func(r *models.SubmitReportRequest) { r.ProfitBaseline = "120" }, "profit_baseline"},
			{"unconfirmed", func(r *models.SubmitReportRequest) { r.ConfirmAccuracy = false }, "confirm_accuracy"},
			{"missing document", func(r *models.SubmitReportRequest) { r.DocumentURL = "" }, "document"},
			{"month out of range", func(r *models.SubmitReportRequest) { r.Month = 12 }, "month"},
			{"year out of range", func(r *models.SubmitReportRequest) { r.Year = 1999 }, "year"},
			{"future period", func(r *models.SubmitReportRequest) { r.Month = 5 }, "period"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				req := submitRequest()
				tt.mutate(&req)

				_, _, err := f.svc.Submit(context.Background(), bankUser(1), req)

				require.Error(t, err)
				require.True(t, IsValidationError(err), "want validation error, got %v", err)
				ve := err.(*ValidationError)
				assert.Contains(t, ve.Fields, tt.field)
				f.reports.AssertNotCalled(t, "CreateWithInvoice")
			})
		}
	})
}

func rejectedReport() *models.TaxReport {
	return &models.TaxReport{
		ID:                5,
		BankID:            1,
		Month:             2,
		Year:              2024,
		TransactionVolume: dec("10000000"),
		ProfitBaseline:    dec("20"),
		Status:            models.ReportStatusRejected,
		RejectionReason:   "volume mismatch",
		DocumentURL:       "https://files.example.com/reports/march.pdf",
		DocumentName:      "march.pdf",
		SubmittedAt:       time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
	}
}

func linkedInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                    7,
		InvoiceNumber:         "INV-202403-00042",
		TaxReportID:           5,
		BankID:                1,
		TaxAmount:             dec("100000"),
		PreviousPaymentAmount: decimal.Zero,
		AdditionalTaxAmount:   dec("100000"),
		PaymentStatus:         models.PaymentStatusPending,
		InvestigationStatus:   models.InvestigationRejected,
		RejectionReason:       "volume mismatch",
	}
}

func TestRevise(t *testing.T) {
	reviseReq := models.ReviseReportRequest{
		TransactionVolume: "12000000",
		ProfitBaseline:    "20",
		ConfirmAccuracy:   true,
	}

	t.Run("revision mutates report and invoice in place", func(t *testing.T) {
		f := newFixture(t)
		report := rejectedReport()
		invoice := linkedInvoice()
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.invoices.On("GetByReportID", uint(5)).Return(invoice, nil)
		f.payments.On("SumSuccessfulForInvoice", uint(7)).Return(decimal.Zero, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)

		gotReport, gotInvoice, err := f.svc.Revise(context.Background(), 1, 5, reviseReq)

		require.NoError(t, err)

		// Identity survives the revision.
		assert.Equal(t, uint(5), gotReport.ID)
		assert.Equal(t, "INV-202403-00042", gotInvoice.InvoiceNumber)

		assert.Equal(t, models.ReportStatusPending, gotReport.Status)
		assert.Equal(t, 1, gotReport.RevisionCount)
		assert.Empty(t, gotReport.RejectionReason)
		require.NotNil(t, gotReport.ResubmittedAt)
		assert.Equal(t, "https://files.example.com/reports/march.pdf", gotReport.DocumentURL,
			"document carries over when no replacement is supplied")

		// 12,000,000 x 20% x 5% = 120,000, nothing paid yet.
		assert.True(t, dec("120000").Equal(gotInvoice.TaxAmount))
		assert.True(t, gotInvoice.PreviousPaymentAmount.IsZero())
		assert.True(t, dec("120000").Equal(gotInvoice.AdditionalTaxAmount))
		assert.Equal(t, models.InvestigationPendingReview, gotInvoice.InvestigationStatus)
		assert.Empty(t, gotInvoice.RejectionReason)
		assert.Nil(t, gotInvoice.ReviewerID)
	})

	t.Run("downward revision after payment leaves nothing due", func(t *testing.T) {
		f := newFixture(t)
		report := rejectedReport()
		invoice := linkedInvoice()
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.invoices.On("GetByReportID", uint(5)).Return(invoice, nil)
		f.payments.On("SumSuccessfulForInvoice", uint(7)).Return(dec("100000"), nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)

		_, gotInvoice, err := f.svc.Revise(context.Background(), 1, 5, models.ReviseReportRequest{
			TransactionVolume: "8000000",
			ProfitBaseline:    "20",
			ConfirmAccuracy:   true,
		})

		require.NoError(t, err)
		// 8,000,000 x 20% x 5% = 80,000 < 100,000 paid; no refund computed.
		assert.True(t, dec("80000").Equal(gotInvoice.TaxAmount))
		assert.True(t, dec("100000").Equal(gotInvoice.PreviousPaymentAmount))
		assert.True(t, gotInvoice.AdditionalTaxAmount.IsZero())
		assert.Equal(t, models.PaymentStatusSuccess, gotInvoice.PaymentStatus,
			"fully covered invoice stays payable-free")
	})

	t.Run("upward revision after payment reopens the invoice for the delta", func(t *testing.T) {
		f := newFixture(t)
		report := rejectedReport()
		invoice := linkedInvoice()
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.invoices.On("GetByReportID", uint(5)).Return(invoice, nil)
		f.payments.On("SumSuccessfulForInvoice", uint(7)).Return(dec("100000"), nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)

		_, gotInvoice, err := f.svc.Revise(context.Background(), 1, 5, reviseReq)

		require.NoError(t, err)
		assert.True(t, dec("20000").Equal(gotInvoice.AdditionalTaxAmount))
		assert.Equal(t, models.PaymentStatusPending, gotInvoice.PaymentStatus)
	})

	t.Run("only the owner may revise", func(t *testing.T) {
		f := newFixture(t)
		f.reports.On("GetByID", uint(5)).Return(rejectedReport(), nil)

		_, _, err := f.svc.Revise(context.Background(), 99, 5, reviseReq)

		assert.ErrorIs(t, err, ErrNotReportOwner)
		f.reports.AssertNotCalled(t, "UpdateWithInvoice")
	})

	t.Run("only rejected reports are revisable", func(t *testing.T) {
		for _, status := range []string{models.ReportStatusPending, models.ReportStatusApproved} {
			f := newFixture(t)
			report := rejectedReport()
			report.Status = status
			f.reports.On("GetByID", uint(5)).Return(report, nil)

			_, _, err := f.svc.Revise(context.Background(), 1, 5, reviseReq)

			assert.ErrorIs(t, err, ErrNotEligibleForRevision, "status %s", status)
			f.reports.AssertNotCalled(t, "UpdateWithInvoice")
		}
	})

	t.Run("revision count strictly increments", func(t *testing.T) {
		f := newFixture(t)
		report := rejectedReport()
		report.RevisionCount = 3
		invoice := linkedInvoice()
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.invoices.On("GetByReportID", uint(5)).Return(invoice, nil)
		f.payments.On("SumSuccessfulForInvoice", uint(7)).Return(decimal.Zero, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)

		gotReport, _, err := f.svc.Revise(context.Background(), 1, 5, reviseReq)

		require.NoError(t, err)
		assert.Equal(t, 4, gotReport.RevisionCount)
	})
}

func paidInvoice() *models.Invoice {
	inv := linkedInvoice()
	inv.PaymentStatus = models.PaymentStatusSuccess
	inv.InvestigationStatus = models.InvestigationPendingReview
	inv.RejectionReason = ""
	return inv
}

func TestApprove(t *testing.T) {
	t.Run("approval transitions both records and fires settlement", func(t *testing.T) {
		f := newFixture(t)
		invoice := paidInvoice()
		report := rejectedReport()
		report.Status = models.ReportStatusPending
		f.invoices.On("GetByID", uint(7)).Return(invoice, nil)
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)
		f.settlements.On("CreateForApproval", report, invoice, uint(42)).
			Return(&models.Settlement{ID: 1}, nil)

		err := f.svc.Approve(context.Background(), 42, 7)

		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusApproved, report.Status)
		assert.Equal(t, models.InvestigationApproved, invoice.InvestigationStatus)
		require.NotNil(t, invoice.ReviewerID)
		assert.Equal(t, uint(42), *invoice.ReviewerID)
		assert.NotNil(t, invoice.ReviewedAt)
		f.settlements.AssertExpectations(t)
	})

	t.Run("settlement failure does not revert the approval", func(t *testing.T) {
		f := newFixture(t)
		invoice := paidInvoice()
		report := rejectedReport()
		f.invoices.On("GetByID", uint(7)).Return(invoice, nil)
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)
		f.settlements.On("CreateForApproval", report, invoice, uint(42)).
			Return(nil, assert.AnError)

		err := f.svc.Approve(context.Background(), 42, 7)

		require.NoError(t, err, "approval is authoritative once committed")
		assert.Equal(t, models.ReportStatusApproved, report.Status)
	})

	t.Run("gate refuses unpaid or already decided invoices", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.Invoice)
		}{
			{"unpaid", func(i *models.Invoice) { i.PaymentStatus = models.PaymentStatusPending }},
			{"processing", func(i *models.Invoice) { i.PaymentStatus = models.PaymentStatusProcessing }},
			{"already approved", func(i *models.Invoice) { i.InvestigationStatus = models.InvestigationApproved }},
			{"already rejected", func(i *models.Invoice) { i.InvestigationStatus = models.InvestigationRejected }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				invoice := paidInvoice()
				tt.mutate(invoice)
				f.invoices.On("GetByID", uint(7)).Return(invoice, nil)

				err := f.svc.Approve(context.Background(), 42, 7)

				assert.ErrorIs(t, err, ErrReviewNotAllowed)
				f.reports.AssertNotCalled(t, "UpdateWithInvoice")
				f.settlements.AssertNotCalled(t, "CreateForApproval")
			})
		}
	})

	t.Run("under review invoices pass the gate", func(t *testing.T) {
		f := newFixture(t)
		invoice := paidInvoice()
		invoice.InvestigationStatus = models.InvestigationUnderReview
		report := rejectedReport()
		f.invoices.On("GetByID", uint(7)).Return(invoice, nil)
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)
		f.settlements.On("CreateForApproval", report, invoice, uint(42)).
			Return(&models.Settlement{}, nil)

		err := f.svc.Approve(context.Background(), 42, 7)

		require.NoError(t, err)
	})
}

func TestReject(t *testing.T) {
	t.Run("rejection mirrors the reason onto both records", func(t *testing.T) {
		f := newFixture(t)
		invoice := paidInvoice()
		report := rejectedReport()
		report.Status = models.ReportStatusPending
		report.RejectionReason = ""
		f.invoices.On("GetByID", uint(7)).Return(invoice, nil)
		f.reports.On("GetByID", uint(5)).Return(report, nil)
		f.reports.On("UpdateWithInvoice", report, invoice).Return(nil)

		err := f.svc.Reject(context.Background(), 42, 7, "volume mismatch")

		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusRejected, report.Status)
		assert.Equal(t, "volume mismatch", report.RejectionReason)
		assert.Equal(t, models.InvestigationRejected, invoice.InvestigationStatus)
		assert.Equal(t, "volume mismatch", invoice.RejectionReason)
		f.settlements.AssertNotCalled(t, "CreateForApproval")
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		f := newFixture(t)
		f.invoices.On("GetByID", uint(7)).Return(paidInvoice(), nil)

		err := f.svc.Reject(context.Background(), 42, 7, "")

		assert.ErrorIs(t, err, ErrReasonRequired)
		f.reports.AssertNotCalled(t, "UpdateWithInvoice")
	})

	t.Run("gate applies to rejection too", func(t *testing.T) {
		f := newFixture(t)
		invoice := paidInvoice()
		invoice.PaymentStatus = models.PaymentStatusFailed
		f.invoices.On("GetByID", uint(7)).Return(invoice, nil)

		err := f.svc.Reject(context.Background(), 42, 7, "bad figures")

		assert.ErrorIs(t, err, ErrReviewNotAllowed)
	})
}

func TestOverview(t *testing.T) {
	t.Run("overview is computed from the report history", func(t *testing.T) {
		f := newFixture(t)
		bank := bankUser(1)
		bank.CreatedAt = time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

		reports := []models.TaxReport{
			{Month: 1, Year: 2024, Status: models.ReportStatusApproved},
		}
		f.reports.On("ListByBank", uint(1)).Return(reports, nil)
		f.agents.On("CountActiveByBank", uint(1)).Return(int64(17), nil)

		got, err := f.svc.Overview(context.Background(), bank)

		require.NoError(t, err)
		assert.Equal(t, 3, got.Current.Month) // April 2024
		assert.Equal(t, 2024, got.Current.Year)
		assert.True(t, got.Status.CanSubmit)
		require.Len(t, got.MissingPeriods, 1) // March 2024 unfiled
		assert.Equal(t, 2, got.MissingPeriods[0].Month)
		assert.Len(t, got.History, 3) // February through April
		assert.Equal(t, int64(17), got.ActiveAgents)
	})

	t.Run("cache hit skips the report store", func(t *testing.T) {
		f := newFixture(t)
		cache := new(MockOverviewCache)
		f.svc.cache = cache

		cache.On("GetSubmissionStatus", mock.Anything, uint(1), mock.AnythingOfType("*report.Overview")).
			Run(func(args mock.Arguments) {
				*(args.Get(2).(*Overview)) = Overview{ActiveAgents: 17}
			}).
			Return(true, nil)

		got, err := f.svc.Overview(context.Background(), bankUser(1))

		require.NoError(t, err)
		assert.Equal(t, int64(17), got.ActiveAgents)
		f.reports.AssertNotCalled(t, "ListByBank")
	})

	t.Run("cache miss stores the computed overview", func(t *testing.T) {
		f := newFixture(t)
		cache := new(MockOverviewCache)
		f.svc.cache = cache
		bank := bankUser(1)
		bank.CreatedAt = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

		cache.On("GetSubmissionStatus", mock.Anything, uint(1), mock.AnythingOfType("*report.Overview")).
			Return(false, nil)
		f.reports.On("ListByBank", uint(1)).Return([]models.TaxReport{}, nil)
		f.agents.On("CountActiveByBank", uint(1)).Return(int64(3), nil)
		cache.On("CacheSubmissionStatus", mock.Anything, uint(1), mock.AnythingOfType("*report.Overview")).
			Return(nil)

		got, err := f.svc.Overview(context.Background(), bank)

		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ActiveAgents)
		cache.AssertExpectations(t)
	})
}
