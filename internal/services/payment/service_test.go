package payment

import (
	"context"
	"testing"
	"time"

	"taxgate/internal/models"
	"taxgate/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

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

func (m *MockInvoices) Update(invoice *models.Invoice) error {
	args := m.Called(invoice)
	return args.Error(0)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) Create(p *models.TaxPayment) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockPayments) GetByReference(reference string) (*models.TaxPayment, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxPayment), args.Error(1)
}

func (m *MockPayments) Update(p *models.TaxPayment) error {
	args := m.Called(p)
	return args.Error(0)
}

func newTestService(invoices *MockInvoices, payments *MockPayments) *service {
	svc := NewService(invoices, payments).(*service)
	svc.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{
			ID:  "cs_test_123",
			URL: "https://gateway.example.com/pay/cs_test_123",
		}, nil
	}
	svc.now = func() time.Time {
		return time.Date(2024, time.April, 3, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func outstandingInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                  7,
		InvoiceNumber:       "INV-202403-00042",
		TaxReportID:         5,
		BankID:              1,
		Currency:            "NGN",
		TaxAmount:           decimal.NewFromInt(100000),
		AdditionalTaxAmount: decimal.NewFromInt(100000),
		PaymentStatus:       models.PaymentStatusPending,
	}
}

func TestInitialize(t *testing.T) {
	t.Run("creates payment record and returns redirect", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		invoice := outstandingInvoice()
		invoices.On("GetByID", uint(7)).Return(invoice, nil)
		payments.On("Create", mock.MatchedBy(func(p *models.TaxPayment) bool {
			return p.InvoiceID == 7 && p.Amount.Equal(decimal.NewFromInt(100000)) &&
				p.Reference != "" && p.GatewaySessionID == "cs_test_123"
		})).Return(nil)
		invoices.On("Update", invoice).Return(nil)

		svc := newTestService(invoices, payments)
		got, err := svc.Initialize(context.Background(), 1, 7)

		require.NoError(t, err)
		assert.Equal(t, "https://gateway.example.com/pay/cs_test_123", got.RedirectURL)
		assert.NotEmpty(t, got.Reference)
		assert.Equal(t, models.PaymentStatusLinkGenerated, invoice.PaymentStatus)
		payments.AssertExpectations(t)
	})

	t.Run("rejects foreign invoices", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		invoices.On("GetByID", uint(7)).Return(outstandingInvoice(), nil)

		svc := newTestService(invoices, payments)
		_, err := svc.Initialize(context.Background(), 99, 7)

		assert.ErrorIs(t, err, ErrNotInvoiceOwner)
	})

	t.Run("rejects settled invoices", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		invoice := outstandingInvoice()
		invoice.PaymentStatus = models.PaymentStatusSuccess
		invoices.On("GetByID", uint(7)).Return(invoice, nil)

		svc := newTestService(invoices, payments)
		_, err := svc.Initialize(context.Background(), 1, 7)

		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("rejects invoices with nothing outstanding", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		invoice := outstandingInvoice()
		invoice.AdditionalTaxAmount = decimal.Zero
		invoices.On("GetByID", uint(7)).Return(invoice, nil)

		svc := newTestService(invoices, payments)
		_, err := svc.Initialize(context.Background(), 1, 7)

		assert.ErrorIs(t, err, ErrNothingToPay)
	})
}

func TestHandleCallback(t *testing.T) {
	t.Run("success marks payment and invoice", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		payment := &models.TaxPayment{ID: 3, InvoiceID: 7, Status: models.PaymentStatusPending}
		invoice := outstandingInvoice()
		payments.On("GetByReference", "ref-1").Return(payment, nil)
		payments.On("Update", payment).Return(nil)
		invoices.On("GetByID", uint(7)).Return(invoice, nil)
		invoices.On("Update", invoice).Return(nil)

		svc := newTestService(invoices, payments)
		err := svc.HandleCallback(context.Background(), "ref-1", models.PaymentStatusSuccess)

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
		assert.NotNil(t, payment.PaidAt)
		assert.Equal(t, models.PaymentStatusSuccess, invoice.PaymentStatus)
		assert.Equal(t, models.PaymentStatusSuccess, payment.Metadata["gateway_status"])
	})

	t.Run("replayed success callback is a no-op", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		payment := &models.TaxPayment{ID: 3, InvoiceID: 7, Status: models.PaymentStatusSuccess}
		payments.On("GetByReference", "ref-1").Return(payment, nil)

		svc := newTestService(invoices, payments)
		err := svc.HandleCallback(context.Background(), "ref-1", models.PaymentStatusSuccess)

		require.NoError(t, err)
		payments.AssertNotCalled(t, "Update")
		invoices.AssertNotCalled(t, "Update")
	})

	t.Run("failure propagates to the invoice", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		payment := &models.TaxPayment{ID: 3, InvoiceID: 7, Status: models.PaymentStatusPending}
		invoice := outstandingInvoice()
		payments.On("GetByReference", "ref-1").Return(payment, nil)
		payments.On("Update", payment).Return(nil)
		invoices.On("GetByID", uint(7)).Return(invoice, nil)
		invoices.On("Update", invoice).Return(nil)

		svc := newTestService(invoices, payments)
		err := svc.HandleCallback(context.Background(), "ref-1", "abandoned")

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusFailed, payment.Status)
		assert.Equal(t, models.PaymentStatusFailed, invoice.PaymentStatus)
		// The gateway's own verdict survives even when we collapse it to failed.
		assert.Equal(t, "abandoned", payment.Metadata["gateway_status"])
	})

	t.Run("unknown reference is refused", func(t *testing.T) {
		invoices := new(MockInvoices)
		payments := new(MockPayments)
		payments.On("GetByReference", "ref-x").Return(nil, repositories.ErrPaymentNotFound)

		svc := newTestService(invoices, payments)
		err := svc.HandleCallback(context.Background(), "ref-x", models.PaymentStatusSuccess)

		assert.ErrorIs(t, err, ErrUnknownReference)
	})
}
