package settlement

import (
	"context"
	"regexp"
	"testing"
	"time"

	"taxgate/internal/models"
	"taxgate/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(s *models.Settlement) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockStore) GetByInvoiceID(invoiceID uint) (*models.Settlement, error) {
	args := m.Called(invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settlement), args.Error(1)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) GetLatestForInvoice(bankID, invoiceID uint) (*models.TaxPayment, error) {
	args := m.Called(bankID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaxPayment), args.Error(1)
}

func approvedInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                  7,
		BankID:              3,
		TaxAmount:           decimal.NewFromInt(100000),
		Currency:            "NGN",
		PaymentStatus:       models.PaymentStatusSuccess,
		InvestigationStatus: models.InvestigationApproved,
	}
}

func TestCreateForApproval(t *testing.T) {
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	report := &models.TaxReport{ID: 5, BankID: 3}

	t.Run("creates settlement with payment linkage", func(t *testing.T) {
		store := new(MockStore)
		payments := new(MockPayments)
		store.On("GetByInvoiceID", uint(7)).Return(nil, repositories.ErrSettlementNotFound)
		payments.On("GetLatestForInvoice", uint(3), uint(7)).
			Return(&models.TaxPayment{ID: 11}, nil)
		store.On("Create", mock.Anything).Return(nil)

		svc := NewService(store, payments)
		got, err := svc.CreateForApproval(context.Background(), report, approvedInvoice(), 1, now)

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100000).Equal(got.Amount))
		assert.Equal(t, uint(5), got.TaxReportID)
		assert.Equal(t, uint(7), got.InvoiceID)
		require.NotNil(t, got.TaxPaymentID)
		assert.Equal(t, uint(11), *got.TaxPaymentID)
		store.AssertExpectations(t)
	})

	t.Run("missing payment record is tolerated", func(t *testing.T) {
		store := new(MockStore)
		payments := new(MockPayments)
		store.On("GetByInvoiceID", uint(7)).Return(nil, repositories.ErrSettlementNotFound)
		payments.On("GetLatestForInvoice", uint(3), uint(7)).
			Return(nil, repositories.ErrPaymentNotFound)
		store.On("Create", mock.Anything).Return(nil)

		svc := NewService(store, payments)
		got, err := svc.CreateForApproval(context.Background(), report, approvedInvoice(), 1, now)

		require.NoError(t, err)
		assert.Nil(t, got.TaxPaymentID)
	})

	t.Run("second approval returns existing settlement", func(t *testing.T) {
		store := new(MockStore)
		payments := new(MockPayments)
		existing := &models.Settlement{ID: 9, InvoiceID: 7}
		store.On("GetByInvoiceID", uint(7)).Return(existing, nil)

		svc := NewService(store, payments)
		got, err := svc.CreateForApproval(context.Background(), report, approvedInvoice(), 1, now)

		require.NoError(t, err)
		assert.Equal(t, existing, got)
		store.AssertNotCalled(t, "Create")
	})

	t.Run("unique index race falls back to existing record", func(t *testing.T) {
		store := new(MockStore)
		payments := new(MockPayments)
		existing := &models.Settlement{ID: 9, InvoiceID: 7}
		store.On("GetByInvoiceID", uint(7)).Return(nil, repositories.ErrSettlementNotFound).Once()
		payments.On("GetLatestForInvoice", uint(3), uint(7)).
			Return(nil, repositories.ErrPaymentNotFound)
		store.On("Create", mock.Anything).Return(repositories.ErrSettlementExists)
		store.On("GetByInvoiceID", uint(7)).Return(existing, nil).Once()

		svc := NewService(store, payments)
		got, err := svc.CreateForApproval(context.Background(), report, approvedInvoice(), 1, now)

		require.NoError(t, err)
		assert.Equal(t, existing, got)
	})

	t.Run("unapproved invoice is refused", func(t *testing.T) {
		store := new(MockStore)
		payments := new(MockPayments)
		inv := approvedInvoice()
		inv.InvestigationStatus = models.InvestigationPendingReview

		svc := NewService(store, payments)
		_, err := svc.CreateForApproval(context.Background(), report, inv, 1, now)

		assert.ErrorIs(t, err, ErrInvoiceNotApproved)
	})
}

func TestGenerateReference(t *testing.T) {
	now := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^STL-202403-\d{5}$`)

	for i := 0; i < 20; i++ {
		ref := GenerateReference(now)
		assert.Regexp(t, pattern, ref)
	}
}
