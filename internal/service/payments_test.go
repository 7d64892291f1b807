package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
)

func seedPayments(f *fixture) {
	f.fake.Accounts = []models.Account{
		{ID: "a1", Code: "1000", Name: "Business Cheque", Type: "Bank"},
		{ID: "a2", Code: "1010", Name: "Petty Cash", Type: "Asset"},
		{ID: "a3", Code: "4000", Name: "Sales", Type: "Revenue"},
	}
	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1", Status: models.InvoiceStatusSent,
		TotalAmount: dec("1150.00"), DueDate: day(7)})
	f.fake.AddPayment(models.Payment{ID: "p0", InvoiceID: "i1", AmountPaid: dec("150.00"), PaymentDate: day(-2), AccountID: "a1"})
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newFixture(t)
	seedPayments(f)

	_, err := f.svc.RecordPayment(context.Background(), "i1", &models.Payment{AmountPaid: dec("1001.00"), AccountID: "a1"})
	assert.ErrorIs(t, err, billing.ErrOverpayment)

	_, err = f.svc.RecordPayment(context.Background(), "i1", &models.Payment{AmountPaid: dec("0"), AccountID: "a1"})
	assert.ErrorIs(t, err, billing.ErrNonPositiveAmount)

	_, err = f.svc.RecordPayment(context.Background(), "i1", &models.Payment{AmountPaid: dec("10"), AccountID: "4000"})
	assert.ErrorIs(t, err, billing.ErrAccountRequired)

	assert.Empty(t, f.fake.Requests("POST /api/invoices/i1/payment"))
}

func TestRecordPaymentSettlesInvoice(t *testing.T) {
	f := newFixture(t)
	seedPayments(f)

	state, err := f.svc.RecordPayment(context.Background(), "i1", &models.Payment{AmountPaid: dec("1000.00"), AccountID: "1000"})
	require.NoError(t, err)
	require.Len(t, state.Payments, 2)
	assert.True(t, state.Summary.BalanceDue.IsZero())
	assert.True(t, dec("1150").Equal(state.Summary.TotalPaid))

	posts := f.fake.Requests("POST /api/invoices/i1/payment")
	require.Len(t, posts, 1)
	body := decodeBody(t, posts[0])
	assert.Equal(t, "a1", body["account_id"])
	assert.Equal(t, "2026-03-10", body["payment_date"])

	assert.Equal(t, models.InvoiceStatusPaid, f.fake.Invoice("i1").Status)
}

func TestReversePayment(t *testing.T) {
	f := newFixture(t)
	seedPayments(f)
	ctx := context.Background()

	_, err := f.svc.ReversePayment(ctx, "i1", "p0", "a3")
	assert.ErrorIs(t, err, billing.ErrAccountRequired)
	assert.Empty(t, f.fake.Requests("DELETE "))

	state, err := f.svc.ReversePayment(ctx, "i1", "p0", "1010")
	require.NoError(t, err)
	assert.Empty(t, state.Payments)
	assert.True(t, dec("1150").Equal(state.Summary.BalanceDue))

	deletes := f.fake.Requests("DELETE /api/invoice-payments/p0")
	require.Len(t, deletes, 1)
	assert.Equal(t, "a2", decodeBody(t, deletes[0])["reversal_account_id"])
}

func TestListAccountsPaymentOnly(t *testing.T) {
	f := newFixture(t)
	seedPayments(f)

	accounts, err := f.svc.ListAccounts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a1", accounts[0].ID)
	assert.Equal(t, "a2", accounts[1].ID)
}
