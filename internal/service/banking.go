package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
)

var ErrNoBankingDetails = errors.New("no default banking details saved: run `biz banking set` first")

func (s *DashboardService) BankingDetails(ctx context.Context) (*models.BankingDetails, error) {
	details, err := s.db.GetBankingDetails(ctx)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, ErrNoBankingDetails
	}
	return details, nil
}

func (s *DashboardService) SaveBankingDetails(ctx context.Context, details *models.BankingDetails) error {
	if err := billing.ValidateBankingDetails(details); err != nil {
		return err
	}
	return s.db.SaveBankingDetails(ctx, details)
}

// ImportBankingDetails reads a YAML document with the same keys as the stored JSON.
func (s *DashboardService) ImportBankingDetails(ctx context.Context, r io.Reader) (*models.BankingDetails, error) {
	var details models.BankingDetails
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to parse banking details: %w", err)
	}
	if err := s.SaveBankingDetails(ctx, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (s *DashboardService) ExportBankingDetails(ctx context.Context, w io.Writer) error {
	details, err := s.BankingDetails(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(details); err != nil {
		return fmt.Errorf("failed to encode banking details: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode banking details: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// ApplyBankingToQuotation upserts the saved banking block into the quotation's
// notes. Applying it again leaves the notes unchanged.
func (s *DashboardService) ApplyBankingToQuotation(ctx context.Context, id string) (*models.Quotation, error) {
	block, err := s.bankingBlock(ctx)
	if err != nil {
		return nil, err
	}
	q, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Notes = billing.UpsertBankingBlock(q.Notes, block)
	if err := s.api.UpdateQuotation(ctx, id, q); err != nil {
		return nil, fmt.Errorf("failed to update quotation notes: %w", err)
	}
	return q, nil
}

func (s *DashboardService) ApplyBankingToInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	block, err := s.bankingBlock(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Notes = billing.UpsertBankingBlock(inv.Notes, block)
	if err := s.api.UpdateInvoice(ctx, id, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice notes: %w", err)
	}
	return inv, nil
}

func (s *DashboardService) bankingBlock(ctx context.Context) (string, error) {
	details, err := s.BankingDetails(ctx)
	if err != nil {
		return "", err
	}
	return billing.FormatBankingBlock(details), nil
}
