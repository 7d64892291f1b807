package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

var (
	ErrUseAccept       = errors.New("use `biz quotations accept` to accept a quotation")
	ErrAlreadyInvoiced = errors.New("quotation has already been invoiced")
	ErrUnknownProduct  = errors.New("product or service not found")
	ErrAmbiguousMatch  = errors.New("more than one match")
	ErrInvalidStatus   = errors.New("invalid status")
)

// ItemDraft is a line item as entered. A product reference supplies the default
// description, price and tax rate; explicit values win.
type ItemDraft struct {
	ProductRef  string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

// DocumentDraft is the input for a new quotation or invoice. Date defaults to
// today; Until is the expiry (quotations) or due date (invoices).
type DocumentDraft struct {
	Number      string
	CustomerRef string
	Currency    string
	Notes       string
	Date        models.Date
	Until       models.Date
	Items       []ItemDraft
}

func (s *DashboardService) ListQuotations(ctx context.Context, status models.QuotationStatus) ([]models.Quotation, error) {
	quotations, err := s.api.ListQuotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	if status == "" {
		return quotations, nil
	}
	return utils.Filter(quotations, func(q models.Quotation) bool { return q.Status == status }), nil
}

func (s *DashboardService) GetQuotation(ctx context.Context, id string) (*models.Quotation, error) {
	q, err := s.api.GetQuotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation %s: %w", id, err)
	}
	return q, nil
}

func (s *DashboardService) CreateQuotation(ctx context.Context, draft *DocumentDraft) (*models.Quotation, error) {
	customer, items, err := s.resolveDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	q := &models.Quotation{
		QuotationNumber: draft.Number,
		CustomerID:      utils.ToPtrNil(customer.ID),
		CustomerName:    customer.Name,
		QuotationDate:   orDate(draft.Date, today),
		ExpiryDate:      orDate(draft.Until, today.AddDate(0, 0, DefaultQuotationValidDays)),
		Currency:        draft.Currency,
		Status:          models.QuotationStatusDraft,
		Notes:           draft.Notes,
		LineItems:       items,
	}
	if q.QuotationNumber == "" {
		q.QuotationNumber = s.quoteNos.Next()
	}
	q.TotalAmount = billing.Recalculate(q.LineItems)

	created, err := s.api.CreateQuotation(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}
	return created, nil
}

func (s *DashboardService) DeleteQuotation(ctx context.Context, id string) error {
	if err := s.api.DeleteQuotation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	return nil
}

// SetQuotationStatus changes the status of a quotation. Accepting goes through
// AcceptQuotation so the invoice is always created.
func (s *DashboardService) SetQuotationStatus(ctx context.Context, id string, status models.QuotationStatus) (*models.Quotation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == models.QuotationStatusAccepted || status == models.QuotationStatusInvoiced {
		return nil, ErrUseAccept
	}
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Status = status
	if err := s.api.UpdateQuotation(ctx, id, q); err != nil {
		return nil, fmt.Errorf("failed to update quotation status: %w", err)
	}
	return q, nil
}

func (s *DashboardService) QuotationPDF(ctx context.Context, id string) ([]byte, error) {
	data, err := s.api.QuotationPDF(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download quotation pdf: %w", err)
	}
	return data, nil
}

func (s *DashboardService) SendQuotation(ctx context.Context, id string, req *api.EmailRequest) error {
	if err := validateEmail(req); err != nil {
		return err
	}
	if err := s.api.SendQuotation(ctx, id, req); err != nil {
		return fmt.Errorf("failed to send quotation: %w", err)
	}
	return nil
}

// RemoveQuotationItem drops the line item at index (0-based) and saves the new total.
func (s *DashboardService) RemoveQuotationItem(ctx context.Context, id string, index int) (*models.Quotation, error) {
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	items, total, err := billing.RemoveItem(q.LineItems, index)
	if err != nil {
		return nil, err
	}
	q.LineItems, q.TotalAmount = items, total
	if err := s.api.UpdateQuotation(ctx, id, q); err != nil {
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}
	return q, nil
}

func (s *DashboardService) ListInvoices(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	invoices, err := s.api.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	if status == "" {
		return invoices, nil
	}
	return utils.Filter(invoices, func(inv models.Invoice) bool { return inv.Status == status }), nil
}

func (s *DashboardService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.api.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice %s: %w", id, err)
	}
	return inv, nil
}

func (s *DashboardService) CreateInvoice(ctx context.Context, draft *DocumentDraft) (*models.Invoice, error) {
	customer, items, err := s.resolveDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	inv := &models.Invoice{
		InvoiceNumber: draft.Number,
		CustomerID:    utils.ToPtrNil(customer.ID),
		CustomerName:  customer.Name,
		InvoiceDate:   orDate(draft.Date, today),
		DueDate:       orDate(draft.Until, today.AddDate(0, 0, s.cfg.InvoiceDueDays)),
		Currency:      draft.Currency,
		Status:        models.InvoiceStatusDraft,
		Notes:         draft.Notes,
		LineItems:     items,
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = s.invoiceNos.Next()
	}
	inv.TotalAmount = billing.Recalculate(inv.LineItems)

	created, err := s.api.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return created, nil
}

func (s *DashboardService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.api.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

func (s *DashboardService) SetInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	if err := s.api.UpdateInvoice(ctx, id, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return inv, nil
}

func (s *DashboardService) InvoicePDF(ctx context.Context, id string) ([]byte, error) {
	data, err := s.api.InvoicePDF(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download invoice pdf: %w", err)
	}
	return data, nil
}

func (s *DashboardService) SendInvoice(ctx context.Context, id string, req *api.EmailRequest) error {
	if err := validateEmail(req); err != nil {
		return err
	}
	if err := s.api.SendInvoice(ctx, id, req); err != nil {
		return fmt.Errorf("failed to send invoice: %w", err)
	}
	return nil
}

func (s *DashboardService) RemoveInvoiceItem(ctx context.Context, id string, index int) (*models.Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	items, total, err := billing.RemoveItem(inv.LineItems, index)
	if err != nil {
		return nil, err
	}
	inv.LineItems, inv.TotalAmount = items, total
	if err := s.api.UpdateInvoice(ctx, id, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, nil
}

// ConversionResult describes an accepted quotation and the invoice created from it.
// MarkErr is set when the invoice exists but the quotation could not be flipped
// to Invoiced.
type ConversionResult struct {
	Quotation *models.Quotation
	Invoice   *models.Invoice
	MarkErr   error
}

// AcceptQuotation marks a quotation Accepted and converts it into a Draft
// invoice. The quotation is read fresh from the server; one without line items
// is rejected before anything is written. Calling it again on an Accepted
// quotation retries the conversion.
func (s *DashboardService) AcceptQuotation(ctx context.Context, id string) (*ConversionResult, error) {
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == models.QuotationStatusInvoiced {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInvoiced, q.QuotationNumber)
	}
	if len(q.LineItems) == 0 {
		return nil, fmt.Errorf("cannot convert quotation %s: %w", q.QuotationNumber, billing.ErrNoLineItems)
	}

	if q.Status != models.QuotationStatusAccepted {
		q.Status = models.QuotationStatusAccepted
		if err := s.api.UpdateQuotation(ctx, id, q); err != nil {
			return nil, fmt.Errorf("failed to accept quotation: %w", err)
		}
	}

	draft, err := billing.NewInvoiceFromQuotation(q, s.invoiceNos.Next(), s.Today(), s.cfg.InvoiceDueDays)
	if err != nil {
		return nil, err
	}
	inv, err := s.api.CreateInvoice(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice from quotation %s: %w", q.QuotationNumber, err)
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = draft.InvoiceNumber
	}

	result := &ConversionResult{Quotation: q, Invoice: inv}

	q.Status = models.QuotationStatusInvoiced
	if err := s.api.UpdateQuotation(ctx, id, q); err != nil {
		q.Status = models.QuotationStatusAccepted
		result.MarkErr = err
		s.log.Warn().Err(err).
			Str("quotation", q.QuotationNumber).
			Str("invoice", inv.InvoiceNumber).
			Msg("invoice created but quotation could not be marked invoiced")
		return result, nil
	}

	s.log.Info().Str("quotation", q.QuotationNumber).Str("invoice", inv.InvoiceNumber).Msg("quotation converted")
	return result, nil
}

func (s *DashboardService) ListCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	var (
		customers []models.Customer
		err       error
	)
	if strings.TrimSpace(query) == "" {
		customers, err = s.api.ListCustomers(ctx)
	} else {
		customers, err = s.api.SearchCustomers(ctx, strings.TrimSpace(query))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *DashboardService) ListProducts(ctx context.Context) ([]models.ProductService, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// resolveDraft turns references into a customer and priced line items, then
// validates the whole document.
func (s *DashboardService) resolveDraft(ctx context.Context, draft *DocumentDraft) (*models.Customer, []models.LineItem, error) {
	var customer *models.Customer
	if strings.TrimSpace(draft.CustomerRef) != "" {
		c, err := s.findCustomer(ctx, draft.CustomerRef)
		if err != nil {
			return nil, nil, err
		}
		customer = c
	}

	var products []models.ProductService
	items := make([]models.LineItem, 0, len(draft.Items))
	for i, d := range draft.Items {
		item := models.LineItem{Description: strings.TrimSpace(d.Description), Quantity: d.Quantity}
		if d.ProductRef != "" {
			if products == nil {
				var err error
				if products, err = s.ListProducts(ctx); err != nil {
					return nil, nil, err
				}
			}
			product, err := findProduct(products, d.ProductRef)
			if err != nil {
				return nil, nil, fmt.Errorf("line item %d: %w", i+1, err)
			}
			billing.ApplyProduct(&item, product)
		}
		if d.UnitPrice != nil {
			item.UnitPrice = *d.UnitPrice
		}
		if d.TaxRate != nil {
			item.TaxRate = *d.TaxRate
		}
		item.LineTotal = billing.LineTotal(item.Quantity, item.UnitPrice, item.TaxRate)
		items = append(items, item)
	}

	var customerID *string
	customerName := ""
	if customer != nil {
		customerID, customerName = utils.ToPtrNil(customer.ID), customer.Name
	}
	if err := billing.ValidateDocument(customerID, customerName, items); err != nil {
		return nil, nil, err
	}
	return customer, items, nil
}

// findCustomer matches by ID first, then by exact (case-insensitive) name. A
// reference that matches nothing is a manually typed customer: it comes back
// with an empty ID and the name as given.
func (s *DashboardService) findCustomer(ctx context.Context, ref string) (*models.Customer, error) {
	ref = strings.TrimSpace(ref)
	customers, err := s.ListCustomers(ctx, "")
	if err != nil {
		return nil, err
	}
	var byName []models.Customer
	for _, c := range customers {
		if c.ID == ref {
			return &c, nil
		}
		if strings.EqualFold(c.Name, ref) {
			byName = append(byName, c)
		}
	}
	switch len(byName) {
	case 0:
		return &models.Customer{Name: ref}, nil
	case 1:
		return &byName[0], nil
	default:
		return nil, fmt.Errorf("%w: %d customers are named %s", ErrAmbiguousMatch, len(byName), ref)
	}
}

func findProduct(products []models.ProductService, ref string) (*models.ProductService, error) {
	var byName []*models.ProductService
	for i := range products {
		if products[i].ID == ref {
			return &products[i], nil
		}
		if strings.EqualFold(products[i].Name, ref) {
			byName = append(byName, &products[i])
		}
	}
	switch len(byName) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, ref)
	case 1:
		return byName[0], nil
	default:
		return nil, fmt.Errorf("%w: %d products are named %s", ErrAmbiguousMatch, len(byName), ref)
	}
}

func validateEmail(req *api.EmailRequest) error {
	addr := strings.TrimSpace(req.RecipientEmail)
	if addr == "" || !strings.Contains(addr, "@") {
		return fmt.Errorf("a valid recipient email is required")
	}
	req.RecipientEmail = addr
	return nil
}

func orDate(d models.Date, fallback time.Time) models.Date {
	if d.Valid() {
		return d
	}
	return models.NewDate(fallback)
}
