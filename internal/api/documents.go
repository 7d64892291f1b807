package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jesses-code-adventures/biz/internal/models"
)

const (
	quotationsPath = "/api/quotations"
	invoicesPath   = "/api/invoices"
)

// EmailRequest asks the server to render a document and mail it.
type EmailRequest struct {
	RecipientEmail string  `json:"recipient_email"`
	Subject        *string `json:"subject,omitempty"`
	Body           *string `json:"body,omitempty"`
}

func (c *Client) ListQuotations(ctx context.Context) ([]models.Quotation, error) {
	return getList[models.Quotation](ctx, c, quotationsPath, nil, "quotations")
}

func (c *Client) GetQuotation(ctx context.Context, id string) (*models.Quotation, error) {
	return getOne[models.Quotation](ctx, c, http.MethodGet, idPath(quotationsPath, id), nil, "quotation")
}

func (c *Client) CreateQuotation(ctx context.Context, q *models.Quotation) (*models.Quotation, error) {
	return getOne[models.Quotation](ctx, c, http.MethodPost, quotationsPath, q, "quotation")
}

// UpdateQuotation sends the full document; the server has no partial update.
func (c *Client) UpdateQuotation(ctx context.Context, id string, q *models.Quotation) error {
	return c.call(ctx, http.MethodPut, idPath(quotationsPath, id), nil, q, "", nil)
}

func (c *Client) DeleteQuotation(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, idPath(quotationsPath, id), nil, nil, "", nil)
}

func (c *Client) QuotationPDF(ctx context.Context, id string) ([]byte, error) {
	return c.pdf(ctx, idPath(quotationsPath, id)+"/pdf")
}

func (c *Client) SendQuotation(ctx context.Context, id string, req *EmailRequest) error {
	return c.call(ctx, http.MethodPost, idPath(quotationsPath, id)+"/send-pdf-email", nil, req, "", nil)
}

func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return getList[models.Invoice](ctx, c, invoicesPath, nil, "invoices")
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return getOne[models.Invoice](ctx, c, http.MethodGet, idPath(invoicesPath, id), nil, "invoice")
}

func (c *Client) CreateInvoice(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	return getOne[models.Invoice](ctx, c, http.MethodPost, invoicesPath, inv, "invoice")
}

func (c *Client) UpdateInvoice(ctx context.Context, id string, inv *models.Invoice) error {
	return c.call(ctx, http.MethodPut, idPath(invoicesPath, id), nil, inv, "", nil)
}

func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, idPath(invoicesPath, id), nil, nil, "", nil)
}

func (c *Client) InvoicePDF(ctx context.Context, id string) ([]byte, error) {
	return c.pdf(ctx, idPath(invoicesPath, id)+"/pdf")
}

func (c *Client) SendInvoice(ctx context.Context, id string, req *EmailRequest) error {
	return c.call(ctx, http.MethodPost, idPath(invoicesPath, id)+"/send-pdf-email", nil, req, "", nil)
}

func (c *Client) pdf(ctx context.Context, path string) ([]byte, error) {
	data, err := c.send(ctx, http.MethodGet, path, "application/pdf", nil, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: GET %s: empty document", ErrMalformedResponse, path)
	}
	return data, nil
}
