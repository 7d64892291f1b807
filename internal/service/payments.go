package service

import (
	"context"
	"fmt"

	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
)

// PaymentState is an invoice's payment history and balance after a change.
type PaymentState struct {
	Payments []models.Payment
	Summary  *models.PaymentSummary
}

func (s *DashboardService) ListAccounts(ctx context.Context, paymentOnly bool) ([]models.Account, error) {
	accounts, err := s.api.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if paymentOnly {
		return billing.PaymentAccounts(accounts), nil
	}
	return accounts, nil
}

// resolveAccount finds ref (ID or code) among the bank and cash accounts.
func (s *DashboardService) resolveAccount(ctx context.Context, ref string) (*models.Account, error) {
	accounts, err := s.ListAccounts(ctx, true)
	if err != nil {
		return nil, err
	}
	account, ok := billing.FindAccount(accounts, ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a bank or cash account", billing.ErrAccountRequired, ref)
	}
	return account, nil
}

func (s *DashboardService) PaymentState(ctx context.Context, invoiceID string) (*PaymentState, error) {
	payments, err := s.api.ListPayments(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	summary, err := s.api.GetPaymentSummary(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment summary: %w", err)
	}
	return &PaymentState{Payments: payments, Summary: summary}, nil
}

// RecordPayment validates p against the invoice's current balance and the
// payment accounts before posting it. Nothing is sent when validation fails.
func (s *DashboardService) RecordPayment(ctx context.Context, invoiceID string, p *models.Payment) (*PaymentState, error) {
	summary, err := s.api.GetPaymentSummary(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment summary: %w", err)
	}

	if !p.PaymentDate.Valid() {
		p.PaymentDate = models.NewDate(s.Today())
	}
	if err := billing.ValidatePaymentRequest(p, summary.BalanceDue); err != nil {
		return nil, err
	}
	account, err := s.resolveAccount(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	p.AccountID = account.ID
	p.InvoiceID = invoiceID

	if err := s.api.RecordPayment(ctx, invoiceID, p); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	s.log.Info().Str("invoice_id", invoiceID).Str("amount", p.AmountPaid.StringFixed(2)).
		Str("account", account.Name).Msg("payment recorded")

	return s.PaymentState(ctx, invoiceID)
}

// ReversePayment deletes a payment, booking the reversal against accountRef,
// and returns the refreshed history and summary of its invoice.
func (s *DashboardService) ReversePayment(ctx context.Context, invoiceID, paymentID, accountRef string) (*PaymentState, error) {
	account, err := s.resolveAccount(ctx, accountRef)
	if err != nil {
		return nil, err
	}
	if err := s.api.ReversePayment(ctx, paymentID, account.ID); err != nil {
		return nil, fmt.Errorf("failed to reverse payment: %w", err)
	}
	s.log.Info().Str("payment_id", paymentID).Str("account", account.Name).Msg("payment reversed")

	return s.PaymentState(ctx, invoiceID)
}
