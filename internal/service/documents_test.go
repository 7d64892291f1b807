package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sentQuotation(items ...models.LineItem) models.Quotation {
	return models.Quotation{
		ID:              "q1",
		QuotationNumber: "QUO-20260301-101500-042",
		CustomerID:      utils.ToPtr("c1"),
		CustomerName:    "Acme Trading",
		QuotationDate:   day(-9),
		ExpiryDate:      day(21),
		Currency:        "ZAR",
		Status:          models.QuotationStatusSent,
		Notes:           "Thanks for your business",
		TotalAmount:     billing.Recalculate(items),
		LineItems:       items,
	}
}

func consulting() []models.LineItem {
	return []models.LineItem{
		{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: dec("0.15")},
		{Description: "Travel", Quantity: dec("1"), UnitPrice: dec("50"), TaxRate: dec("0.15")},
	}
}

func TestAcceptQuotationConvertsToInvoice(t *testing.T) {
	f := newFixture(t)
	f.fake.AddQuotation(sentQuotation(consulting()...))

	result, err := f.svc.AcceptQuotation(context.Background(), "q1")
	require.NoError(t, err)
	require.NoError(t, result.MarkErr)

	inv := f.fake.Invoice(result.Invoice.ID)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-20260310-090000-"), inv.InvoiceNumber)
	assert.Len(t, inv.InvoiceNumber, len("INV-20260310-090000-000"))
	assert.NotEqual(t, "QUO-20260301-101500-042", inv.InvoiceNumber)
	assert.Equal(t, "2026-03-10", inv.InvoiceDate.String())
	assert.Equal(t, "2026-03-17", inv.DueDate.String())
	assert.Equal(t, "ZAR", inv.Currency)
	assert.Equal(t, "c1", *inv.CustomerID)
	assert.True(t, dec("287.50").Equal(inv.TotalAmount))
	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)

	assert.Equal(t, models.QuotationStatusInvoiced, f.fake.Quotation("q1").Status)

	quotationWrites := f.fake.Requests("PUT /api/quotations/q1")
	require.Len(t, quotationWrites, 2)
	assert.Equal(t, "Accepted", decodeBody(t, quotationWrites[0])["status"])
	assert.Equal(t, "Invoiced", decodeBody(t, quotationWrites[1])["status"])

	_, err = f.svc.AcceptQuotation(context.Background(), "q1")
	assert.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestAcceptQuotationWithoutItemsWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.fake.AddQuotation(sentQuotation())

	_, err := f.svc.AcceptQuotation(context.Background(), "q1")
	require.ErrorIs(t, err, billing.ErrNoLineItems)
	assert.Contains(t, err.Error(), "QUO-20260301-101500-042")

	assert.Empty(t, f.fake.Requests("POST /api/invoices"))
	assert.Empty(t, f.fake.Requests("PUT "))
	assert.Equal(t, models.QuotationStatusSent, f.fake.Quotation("q1").Status)
}

func TestAcceptQuotationKeepsInvoiceWhenMarkingFails(t *testing.T) {
	f := newFixture(t)
	q := sentQuotation(consulting()...)
	q.Status = models.QuotationStatusAccepted
	f.fake.AddQuotation(q)
	f.fake.FailOn(http.MethodPut, "/api/quotations/q1", http.StatusInternalServerError)

	result, err := f.svc.AcceptQuotation(context.Background(), "q1")
	require.NoError(t, err)
	require.Error(t, result.MarkErr)
	assert.Equal(t, models.QuotationStatusAccepted, result.Quotation.Status)

	assert.Len(t, f.fake.Requests("POST /api/invoices"), 1)
	assert.Equal(t, models.QuotationStatusAccepted, f.fake.Quotation("q1").Status)
}

func TestSetQuotationStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddQuotation(sentQuotation(consulting()...))

	_, err := f.svc.SetQuotationStatus(ctx, "q1", models.QuotationStatusAccepted)
	assert.ErrorIs(t, err, ErrUseAccept)
	_, err = f.svc.SetQuotationStatus(ctx, "q1", "Pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	q, err := f.svc.SetQuotationStatus(ctx, "q1", models.QuotationStatusDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusDeclined, q.Status)
	assert.Equal(t, models.QuotationStatusDeclined, f.fake.Quotation("q1").Status)
}

func TestCreateQuotationFromDraft(t *testing.T) {
	f := newFixture(t)
	f.fake.Customers = []models.Customer{{ID: "c1", Name: "Acme Trading"}, {ID: "c2", Name: "Blue Sky"}}
	f.fake.Products = []models.ProductService{{ID: "p1", Name: "Consulting", UnitPrice: dec("100"), TaxRate: dec("0.15")}}

	q, err := f.svc.CreateQuotation(context.Background(), &DocumentDraft{
		CustomerRef: "acme trading",
		Currency:    "ZAR",
		Items: []ItemDraft{
			{ProductRef: "Consulting", Quantity: dec("2")},
			{Description: "Travel", Quantity: dec("1"), UnitPrice: utils.ToPtr(dec("50")), TaxRate: utils.ToPtr(dec("0.15"))},
		},
	})
	require.NoError(t, err)

	stored := f.fake.Quotation(q.ID)
	assert.Equal(t, "c1", *stored.CustomerID)
	assert.True(t, strings.HasPrefix(stored.QuotationNumber, "QUO-20260310-"))
	assert.Equal(t, "2026-04-09", stored.ExpiryDate.String())
	assert.Equal(t, "Consulting", stored.LineItems[0].Description)
	assert.True(t, dec("230").Equal(stored.LineItems[0].LineTotal))
	assert.True(t, dec("287.50").Equal(stored.TotalAmount))
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t)
	f.fake.Customers = []models.Customer{{ID: "c1", Name: "Acme Trading"}}

	_, err := f.svc.CreateInvoice(context.Background(), &DocumentDraft{
		CustomerRef: "c1",
		Items:       []ItemDraft{{Description: "", Quantity: dec("0")}},
	})
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.fake.Requests("POST "))

	_, err = f.svc.CreateInvoice(context.Background(), &DocumentDraft{
		Items: []ItemDraft{{Description: "Consulting", Quantity: dec("1"), UnitPrice: utils.ToPtr(dec("100"))}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.fake.Requests("POST "))
}

func TestCreateQuotationForWalkInCustomer(t *testing.T) {
	f := newFixture(t)
	f.fake.Customers = []models.Customer{{ID: "c1", Name: "Acme Trading"}}

	q, err := f.svc.CreateQuotation(context.Background(), &DocumentDraft{
		CustomerRef: "  Walk-in Customer ",
		Items:       []ItemDraft{{Description: "Consulting", Quantity: dec("1"), UnitPrice: utils.ToPtr(dec("100"))}},
	})
	require.NoError(t, err)

	stored := f.fake.Quotation(q.ID)
	assert.Nil(t, stored.CustomerID)
	assert.Equal(t, "Walk-in Customer", stored.CustomerName)

	body := decodeBody(t, f.fake.Requests("POST /api/quotations")[0])
	assert.Equal(t, "Walk-in Customer", body["customer_name"])
	assert.NotContains(t, body, "customer_id")
}

func TestCreateQuotationRejectsAmbiguousCustomer(t *testing.T) {
	f := newFixture(t)
	f.fake.Customers = []models.Customer{{ID: "c1", Name: "Acme Trading"}, {ID: "c2", Name: "ACME trading"}}

	_, err := f.svc.CreateQuotation(context.Background(), &DocumentDraft{
		CustomerRef: "acme trading",
		Items:       []ItemDraft{{Description: "Consulting", Quantity: dec("1"), UnitPrice: utils.ToPtr(dec("100"))}},
	})
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.Empty(t, f.fake.Requests("POST "))
}

func TestRemoveInvoiceItem(t *testing.T) {
	f := newFixture(t)
	items := consulting()
	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1", Status: models.InvoiceStatusDraft,
		LineItems: items, TotalAmount: billing.Recalculate(items)})

	inv, err := f.svc.RemoveInvoiceItem(context.Background(), "i1", 1)
	require.NoError(t, err)
	assert.True(t, dec("230").Equal(inv.TotalAmount))
	assert.Len(t, f.fake.Invoice("i1").LineItems, 1)

	_, err = f.svc.RemoveInvoiceItem(context.Background(), "i1", 4)
	assert.Error(t, err)
}

func TestDocumentPDFAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1"})

	data, err := f.svc.InvoicePDF(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	assert.Error(t, f.svc.SendInvoice(ctx, "i1", &api.EmailRequest{RecipientEmail: "nope"}))
	require.NoError(t, f.svc.SendInvoice(ctx, "i1", &api.EmailRequest{RecipientEmail: " billing@acme.test "}))
	sends := f.fake.Requests("POST /api/invoices/i1/send-pdf-email")
	require.Len(t, sends, 1)
	assert.Equal(t, "billing@acme.test", decodeBody(t, sends[0])["recipient_email"])
}
