package api

import (
	"context"
	"net/http"

	"github.com/jesses-code-adventures/biz/internal/models"
)

type reversalRequest struct {
	ReversalAccountID string `json:"reversal_account_id"`
}

func (c *Client) RecordPayment(ctx context.Context, invoiceID string, p *models.Payment) error {
	return c.call(ctx, http.MethodPost, idPath(invoicesPath, invoiceID)+"/payment", nil, p, "", nil)
}

func (c *Client) ListPayments(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	return getList[models.Payment](ctx, c, idPath(invoicesPath, invoiceID)+"/payments", nil, "payments")
}

func (c *Client) GetPaymentSummary(ctx context.Context, invoiceID string) (*models.PaymentSummary, error) {
	path := idPath(invoicesPath, invoiceID) + "/payments-summary"
	return getOne[models.PaymentSummary](ctx, c, http.MethodGet, path, nil, "summary")
}

// ReversePayment deletes a payment, booking the reversal against accountID.
func (c *Client) ReversePayment(ctx context.Context, paymentID, accountID string) error {
	return c.call(ctx, http.MethodDelete, idPath("/api/invoice-payments", paymentID), nil,
		&reversalRequest{ReversalAccountID: accountID}, "", nil)
}
