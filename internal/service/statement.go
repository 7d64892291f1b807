package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

// WriteStatement renders an invoice statement (line items, payment history and
// balance) as a PDF. The saved banking details are appended when present.
func (s *DashboardService) WriteStatement(ctx context.Context, invoiceID string, w io.Writer) error {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	state, err := s.PaymentState(ctx, invoiceID)
	if err != nil {
		return err
	}
	banking, err := s.BankingDetails(ctx)
	if err != nil && !errors.Is(err, ErrNoBankingDetails) {
		return err
	}

	pdf := buildStatementPDF(inv, state, banking, s.Today().Format(models.DateLayout))
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render statement: %w", err)
	}
	return nil
}

func buildStatementPDF(inv *models.Invoice, state *PaymentState, banking *models.BankingDetails, generated string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)

	pdf.Cell(40, 10, fmt.Sprintf("Statement - %s", inv.InvoiceNumber))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 6, fmt.Sprintf("Customer: %s", inv.CustomerName))
	pdf.Cell(95, 6, fmt.Sprintf("Status: %s", inv.Status))
	pdf.Ln(6)
	pdf.Cell(95, 6, fmt.Sprintf("Invoice Date: %s", inv.InvoiceDate))
	pdf.Cell(95, 6, fmt.Sprintf("Due Date: %s", inv.DueDate))
	pdf.Ln(6)
	pdf.Cell(95, 6, fmt.Sprintf("Generated: %s", generated))
	pdf.Ln(12)

	// Line items, total ~190mm on A4
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(80, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Tax", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Line Total", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, item := range inv.LineItems {
		lines := wrapText(item.Description, 48)
		rowHeight := float64(len(lines)) * 6

		x, y := pdf.GetX(), pdf.GetY()
		pdf.Rect(x, y, 80, rowHeight, "D")
		for i, line := range lines {
			pdf.SetXY(x+1, y+float64(i)*6)
			pdf.Cell(78, 6, line)
		}
		pdf.SetXY(x+80, y)
		pdf.CellFormat(20, rowHeight, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, rowHeight, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, rowHeight, item.TaxRate.Shift(2).StringFixed(1)+"%", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, rowHeight, item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(155, 8, fmt.Sprintf("Total (%s):", inv.Currency))
	pdf.CellFormat(35, 8, inv.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Payments:")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	if len(state.Payments) == 0 {
		pdf.Cell(40, 6, "No payments recorded")
		pdf.Ln(8)
	}
	for _, p := range state.Payments {
		pdf.CellFormat(40, 6, p.PaymentDate.String(), "", 0, "L", false, 0, "")
		pdf.CellFormat(115, 6, strings.TrimSpace(utils.FromPtr(p.Notes)), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, p.AmountPaid.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(155, 8, "Total Paid:")
	pdf.CellFormat(35, 8, state.Summary.TotalPaid.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(155, 10, "Balance Due:")
	pdf.CellFormat(35, 10, state.Summary.BalanceDue.StringFixed(2), "", 1, "R", false, 0, "")

	if banking != nil {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Payment Details:")
		pdf.Ln(10)

		pdf.SetFont("Arial", "", 11)
		pdf.Cell(40, 6, fmt.Sprintf("Bank: %s", banking.BankName))
		pdf.Ln(6)
		pdf.Cell(40, 6, fmt.Sprintf("Account Name: %s", banking.AccountName))
		pdf.Ln(6)
		pdf.Cell(40, 6, fmt.Sprintf("Account Number: %s", banking.AccountNumber))
		pdf.Ln(6)
		pdf.Cell(40, 6, fmt.Sprintf("Branch Code: %s", banking.BranchCode))
		pdf.Ln(6)
		if banking.ReferenceHint != nil {
			pdf.Cell(40, 6, fmt.Sprintf("Reference: %s", *banking.ReferenceHint))
			pdf.Ln(6)
		}
	}
	return pdf
}

func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > maxChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
