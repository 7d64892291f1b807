package billing

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jesses-code-adventures/biz/internal/models"
)

var ErrNoLineItems = errors.New("quotation has no line items to convert")

const DefaultInvoiceDueDays = 7

// QuotationShouldExpire reports whether the sweep should move q to Expired.
func QuotationShouldExpire(q *models.Quotation, today time.Time) bool {
	switch q.Status {
	case models.QuotationStatusAccepted, models.QuotationStatusDeclined,
		models.QuotationStatusInvoiced, models.QuotationStatusExpired:
		return false
	}
	return q.ExpiryDate.IsPast(today)
}

// InvoiceShouldBeOverdue reports whether the sweep should move inv to Overdue.
func InvoiceShouldBeOverdue(inv *models.Invoice, today time.Time) bool {
	switch inv.Status {
	case models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
		return false
	}
	return inv.DueDate.IsPast(today)
}

// NumberGenerator produces document numbers of the form PREFIX-YYYYMMDD-HHMMSS-NNN.
type NumberGenerator struct {
	Prefix string
	Now    func() time.Time
	Rand   func(n int) int
}

func NewNumberGenerator(prefix string) *NumberGenerator {
	return &NumberGenerator{Prefix: prefix, Now: time.Now, Rand: rand.Intn}
}

func (g *NumberGenerator) Next() string {
	now := g.Now()
	return fmt.Sprintf("%s-%s-%s-%03d", g.Prefix, now.Format("20060102"), now.Format("150405"), g.Rand(1000))
}

// NewInvoiceFromQuotation carries customer, currency, line items and total over to a
// new Draft invoice dated today and due dueDays later.
func NewInvoiceFromQuotation(q *models.Quotation, number string, today time.Time, dueDays int) (*models.Invoice, error) {
	if len(q.LineItems) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLineItems, q.QuotationNumber)
	}
	if number == q.QuotationNumber {
		return nil, fmt.Errorf("invoice number %s must differ from the quotation number", number)
	}

	items := make([]models.LineItem, len(q.LineItems))
	copy(items, q.LineItems)

	issued := models.NewDate(today)
	quotationID := q.ID

	return &models.Invoice{
		InvoiceNumber: number,
		CustomerID:    q.CustomerID,
		CustomerName:  q.CustomerName,
		InvoiceDate:   issued,
		DueDate:       models.NewDate(issued.AddDate(0, 0, dueDays)),
		Currency:      q.Currency,
		Status:        models.InvoiceStatusDraft,
		Notes:         q.Notes,
		TotalAmount:   q.TotalAmount,
		LineItems:     items,
		QuotationID:   &quotationID,
	}, nil
}
