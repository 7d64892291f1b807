package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newInvoicesCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices",
		Long:  "Create, send and track invoices. Payments are managed with `biz payments`.",
	}

	cmd.AddCommand(
		newInvoicesListCmd(dashboardService),
		newInvoicesShowCmd(dashboardService),
		newInvoicesCreateCmd(dashboardService),
		newInvoicesDeleteCmd(dashboardService),
		newInvoicesStatusCmd(dashboardService),
		newInvoicesPDFCmd(dashboardService),
		newInvoicesSendCmd(dashboardService),
		newInvoicesRemoveItemCmd(dashboardService),
		newInvoicesStatementCmd(dashboardService),
	)

	return cmd
}

func newInvoicesListCmd(dashboardService *service.DashboardService) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.InvoiceStatus
			if status != "" {
				s, err := matchStatus(status, invoiceStatuses)
				if err != nil {
					return err
				}
				filter = s
			}

			invoices, err := dashboardService.ListInvoices(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(invoices) == 0 {
				fmt.Println("No invoices found.")
				return nil
			}

			for _, inv := range invoices {
				fmt.Printf("%s | %s | %s | %s | Due: %s | %s\n",
					inv.ID,
					inv.InvoiceNumber,
					orDash(inv.CustomerName),
					inv.Status,
					orDash(inv.DueDate.String()),
					formatMoney(inv.TotalAmount, inv.Currency))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show invoices with this status")
	return cmd
}

func newInvoicesShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an invoice with its line items and balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			inv, err := dashboardService.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			state, err := dashboardService.PaymentState(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Invoice %s (ID: %s)\n", inv.InvoiceNumber, inv.ID)
			fmt.Printf("Customer: %s\n", orDash(inv.CustomerName))
			fmt.Printf("Status: %s\n", inv.Status)
			fmt.Printf("Date: %s | Due: %s\n", orDash(inv.InvoiceDate.String()), orDash(inv.DueDate.String()))
			fmt.Println("Items:")
			printLineItems(inv.LineItems)
			fmt.Printf("Total: %s\n", formatMoney(inv.TotalAmount, inv.Currency))
			printPaymentState(state, inv.Currency)
			if inv.Notes != "" {
				fmt.Printf("\nNotes:\n%s\n", inv.Notes)
			}
			return nil
		},
	}
}

func newInvoicesCreateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var customer, currency, notes, date, due, number string
	var items []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft invoice",
		Long: `Create a draft invoice. Line items are given with repeated --item flags:
  --item "Consulting|2|100|0.15"   description|quantity|unit price|tax rate
  --item "product=Consulting|2"    a product or service, optionally followed by |price|tax
The due date defaults to INVOICE_DUE_DAYS after the invoice date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := documentDraft(customer, currency, notes, number, date, due, items)
			if err != nil {
				return err
			}

			inv, err := dashboardService.CreateInvoice(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Printf("Created invoice %s (ID: %s, Total: %s)\n", inv.InvoiceNumber, inv.ID, formatMoney(inv.TotalAmount, inv.Currency))
			return nil
		},
	}

	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer ID or name; a name not in the directory is used as typed")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes shown on the invoice")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Invoice date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&number, "number", "", "Invoice number (generated when empty)")
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Line item (repeatable)")
	cmd.MarkFlagRequired("customer")

	return cmd
}

func newInvoicesDeleteCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dashboardService.DeleteInvoice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted invoice %s\n", args[0])
			return nil
		},
	}
}

func newInvoicesStatusCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := matchStatus(args[1], invoiceStatuses)
			if err != nil {
				return err
			}
			inv, err := dashboardService.SetInvoiceStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("Invoice %s is now %s\n", inv.InvoiceNumber, inv.Status)
			return nil
		},
	}
}

func newInvoicesPDFCmd(dashboardService *service.DashboardService) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Download the invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := dashboardService.InvoicePDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = fmt.Sprintf("invoice_%s.pdf", args[0])
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			fmt.Printf("Saved %s (%d bytes)\n", path, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default invoice_<id>.pdf)")
	return cmd
}

func newInvoicesSendCmd(dashboardService *service.DashboardService) *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Email the invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &api.EmailRequest{RecipientEmail: to, Subject: utils.ToPtrNil(subject), Body: utils.ToPtrNil(body)}
			if err := dashboardService.SendInvoice(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Printf("Sent invoice %s to %s\n", args[0], req.RecipientEmail)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&body, "body", "", "Email body")
	cmd.MarkFlagRequired("to")

	return cmd
}

func newInvoicesRemoveItemCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <id> <position>",
		Short: "Remove a line item (positions start at 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			inv, err := dashboardService.RemoveInvoiceItem(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			fmt.Printf("Removed item %s from %s (Total: %s)\n", args[1], inv.InvoiceNumber, formatMoney(inv.TotalAmount, inv.Currency))
			return nil
		},
	}
}

func newInvoicesStatementCmd(dashboardService *service.DashboardService) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "statement <id>",
		Short: "Generate a PDF statement of an invoice and its payments",
		Long:  "Generate a PDF with the invoice's line items, payment history and balance due. Saved banking details are added as payment instructions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := dashboardService.WriteStatement(cmd.Context(), args[0], &buf); err != nil {
				return err
			}
			path := output
			if path == "" {
				path = fmt.Sprintf("statement_%s.pdf", args[0])
			}
			if err := writeOutput(path, buf.Bytes()); err != nil {
				return err
			}
			fmt.Printf("Generated statement: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default statement_<id>.pdf)")
	return cmd
}
