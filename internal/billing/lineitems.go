// Package billing holds the client-side money rules for quotations and invoices:
// line totals, document totals, submission validation, numbering, payment checks
// and the banking block kept in a document's notes.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/biz/internal/models"
)

// LineTotal is round(quantity * unit_price * (1 + tax_rate), 2), rounding half up.
func LineTotal(quantity, unitPrice, taxRate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Mul(decimal.NewFromInt(1).Add(taxRate)).Round(2)
}

// Recalculate refreshes every line total from its inputs and returns the document total.
func Recalculate(items []models.LineItem) decimal.Decimal {
	for i := range items {
		items[i].LineTotal = LineTotal(items[i].Quantity, items[i].UnitPrice, items[i].TaxRate)
	}
	return DocumentTotal(items)
}

// DocumentTotal sums line totals as they are; call Recalculate first when inputs changed.
func DocumentTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// ApplyProduct fills an item from a catalogue product. A nil product turns the row
// into a custom item with every amount reset.
func ApplyProduct(item *models.LineItem, product *models.ProductService) {
	if product == nil {
		item.ProductServiceID = nil
		item.Quantity = decimal.Zero
		item.UnitPrice = decimal.Zero
		item.TaxRate = decimal.Zero
		item.LineTotal = decimal.Zero
		return
	}

	id := product.ID
	item.ProductServiceID = &id
	item.UnitPrice = product.UnitPrice
	item.TaxRate = product.TaxRate
	if strings.TrimSpace(item.Description) == "" {
		item.Description = product.Name
	}
	if item.Quantity.IsZero() {
		item.Quantity = decimal.NewFromInt(1)
	}
	item.LineTotal = LineTotal(item.Quantity, item.UnitPrice, item.TaxRate)
}

// RemoveItem drops the item at index and returns the shortened list with its new total.
func RemoveItem(items []models.LineItem, index int) ([]models.LineItem, decimal.Decimal, error) {
	if index < 0 || index >= len(items) {
		return items, DocumentTotal(items), fmt.Errorf("line item %d does not exist", index+1)
	}
	out := append(items[:index:index], items[index+1:]...)
	return out, Recalculate(out), nil
}

// ValidationError lists every client-side problem found before submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// ValidateDocument checks a quotation or invoice before it is submitted: a resolved
// customer, at least one line item, and a description, positive quantity and
// positive unit price on every item.
func ValidateDocument(customerID *string, customerName string, items []models.LineItem) error {
	verr := &ValidationError{}

	if (customerID == nil || strings.TrimSpace(*customerID) == "") && strings.TrimSpace(customerName) == "" {
		verr.add("a customer is required")
	}
	if len(items) == 0 {
		verr.add("at least one line item is required")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			verr.add("line item %d needs a description", i+1)
		}
		if !item.Quantity.IsPositive() {
			verr.add("line item %d needs a quantity greater than 0", i+1)
		}
		if !item.UnitPrice.IsPositive() {
			verr.add("line item %d needs a unit price greater than 0", i+1)
		}
	}

	return verr.orNil()
}
