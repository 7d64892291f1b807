package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func testBanking() *models.BankingDetails {
	return &models.BankingDetails{
		AccountName:   "Mokoena Consulting",
		BankName:      "First National Bank",
		AccountNumber: "62812345678",
		BranchCode:    "250655",
		ReferenceHint: utils.ToPtr("Invoice number"),
	}
}

func TestApplyBankingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1", Notes: "Payment within 7 days."})

	_, err := f.svc.ApplyBankingToInvoice(ctx, "i1")
	require.ErrorIs(t, err, ErrNoBankingDetails)

	require.NoError(t, f.svc.SaveBankingDetails(ctx, testBanking()))

	first, err := f.svc.ApplyBankingToInvoice(ctx, "i1")
	require.NoError(t, err)
	second, err := f.svc.ApplyBankingToInvoice(ctx, "i1")
	require.NoError(t, err)

	assert.Equal(t, first.Notes, second.Notes)
	notes := f.fake.Invoice("i1").Notes
	assert.Equal(t, 1, strings.Count(notes, billing.BankingHeader))
	assert.True(t, strings.HasPrefix(notes, "Payment within 7 days.\n\n"+billing.BankingHeader))
	assert.Contains(t, notes, "Branch Code: 250655")
}

func TestApplyBankingReplacesOldBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddQuotation(models.Quotation{ID: "q1", QuotationNumber: "QUO-1",
		Notes: "Valid for 30 days.\n\n" + billing.BankingHeader + "\nBank: Old Bank"})
	require.NoError(t, f.svc.SaveBankingDetails(ctx, testBanking()))

	q, err := f.svc.ApplyBankingToQuotation(ctx, "q1")
	require.NoError(t, err)
	assert.NotContains(t, q.Notes, "Old Bank")
	assert.Contains(t, q.Notes, "Bank: First National Bank")
	assert.True(t, strings.HasPrefix(q.Notes, "Valid for 30 days."))
}

func TestSaveBankingDetailsValidates(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SaveBankingDetails(context.Background(), &models.BankingDetails{AccountName: "Only a name"})
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)

	_, err = f.svc.BankingDetails(context.Background())
	assert.ErrorIs(t, err, ErrNoBankingDetails)
}

func TestBankingImportExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := `account_name: Mokoena Consulting
bank_name: First National Bank
account_number: "62812345678"
branch_code: "250655"
reference_hint: Invoice number
`
	imported, err := f.svc.ImportBankingDetails(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, testBanking(), imported)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportBankingDetails(ctx, &buf))
	assert.Contains(t, buf.String(), "account_number: \"62812345678\"")
	assert.NotContains(t, buf.String(), "swift_code")

	_, err = f.svc.ImportBankingDetails(ctx, strings.NewReader("bank: nope\n"))
	assert.Error(t, err)
}

func TestWriteStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := consulting()
	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1", CustomerName: "Acme Trading",
		InvoiceDate: day(-5), DueDate: day(2), Currency: "ZAR", Status: models.InvoiceStatusPartiallyPaid,
		LineItems: items, TotalAmount: billing.Recalculate(items)})
	f.fake.AddPayment(models.Payment{ID: "p1", InvoiceID: "i1", AmountPaid: dec("100"), PaymentDate: day(-1), AccountID: "a1"})

	var withoutBanking bytes.Buffer
	require.NoError(t, f.svc.WriteStatement(ctx, "i1", &withoutBanking))
	assert.True(t, bytes.HasPrefix(withoutBanking.Bytes(), []byte("%PDF")))

	require.NoError(t, f.svc.SaveBankingDetails(ctx, testBanking()))
	var withBanking bytes.Buffer
	require.NoError(t, f.svc.WriteStatement(ctx, "i1", &withBanking))
	assert.Greater(t, withBanking.Len(), withoutBanking.Len())
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, wrapText("   ", 10))
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
}
