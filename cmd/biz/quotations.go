package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newQuotationsCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quotations",
		Aliases: []string{"quotes"},
		Short:   "Manage quotations",
		Long:    "Create, send and accept quotations. Accepting a quotation converts it into a draft invoice.",
	}

	cmd.AddCommand(
		newQuotationsListCmd(dashboardService),
		newQuotationsShowCmd(dashboardService),
		newQuotationsCreateCmd(dashboardService),
		newQuotationsDeleteCmd(dashboardService),
		newQuotationsStatusCmd(dashboardService),
		newQuotationsAcceptCmd(dashboardService),
		newQuotationsPDFCmd(dashboardService),
		newQuotationsSendCmd(dashboardService),
		newQuotationsRemoveItemCmd(dashboardService),
	)

	return cmd
}

func newQuotationsListCmd(dashboardService *service.DashboardService) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.QuotationStatus
			if status != "" {
				s, err := matchStatus(status, quotationStatuses)
				if err != nil {
					return err
				}
				filter = s
			}

			quotations, err := dashboardService.ListQuotations(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(quotations) == 0 {
				fmt.Println("No quotations found.")
				return nil
			}

			for _, q := range quotations {
				fmt.Printf("%s | %s | %s | %s | Expires: %s | %s\n",
					q.ID,
					q.QuotationNumber,
					orDash(q.CustomerName),
					q.Status,
					orDash(q.ExpiryDate.String()),
					formatMoney(q.TotalAmount, q.Currency))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show quotations with this status")
	return cmd
}

func newQuotationsShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a quotation with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := dashboardService.GetQuotation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printQuotation(q)
			return nil
		},
	}
}

func printQuotation(q *models.Quotation) {
	fmt.Printf("Quotation %s (ID: %s)\n", q.QuotationNumber, q.ID)
	fmt.Printf("Customer: %s\n", orDash(q.CustomerName))
	fmt.Printf("Status: %s\n", q.Status)
	fmt.Printf("Date: %s | Expires: %s\n", orDash(q.QuotationDate.String()), orDash(q.ExpiryDate.String()))
	fmt.Println("Items:")
	printLineItems(q.LineItems)
	fmt.Printf("Total: %s\n", formatMoney(q.TotalAmount, q.Currency))
	if q.Notes != "" {
		fmt.Printf("\nNotes:\n%s\n", q.Notes)
	}
}

func newQuotationsCreateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var customer, currency, notes, date, expiry, number string
	var items []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft quotation",
		Long: `Create a draft quotation. Line items are given with repeated --item flags:
  --item "Consulting|2|100|0.15"   description|quantity|unit price|tax rate
  --item "product=Consulting|2"    a product or service, optionally followed by |price|tax
The expiry date defaults to 30 days from today.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := documentDraft(customer, currency, notes, number, date, expiry, items)
			if err != nil {
				return err
			}

			q, err := dashboardService.CreateQuotation(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Printf("Created quotation %s (ID: %s, Total: %s)\n", q.QuotationNumber, q.ID, formatMoney(q.TotalAmount, q.Currency))
			return nil
		},
	}

	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer ID or name; a name not in the directory is used as typed")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes shown on the quotation")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Quotation date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&expiry, "expiry", "e", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&number, "number", "", "Quotation number (generated when empty)")
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Line item (repeatable)")
	cmd.MarkFlagRequired("customer")

	return cmd
}

func documentDraft(customer, currency, notes, number, date, until string, itemSpecs []string) (*service.DocumentDraft, error) {
	issued, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	untilDate, err := parseDate(until)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(itemSpecs)
	if err != nil {
		return nil, err
	}
	return &service.DocumentDraft{
		Number:      number,
		CustomerRef: customer,
		Currency:    currency,
		Notes:       notes,
		Date:        issued,
		Until:       untilDate,
		Items:       items,
	}, nil
}

func newQuotationsDeleteCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dashboardService.DeleteQuotation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted quotation %s\n", args[0])
			return nil
		},
	}
}

func newQuotationsStatusCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a quotation",
		Long:  "Change the status of a quotation to Draft, Sent, Declined or Expired. Use `biz quotations accept` to accept one.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := matchStatus(args[1], quotationStatuses)
			if err != nil {
				return err
			}
			q, err := dashboardService.SetQuotationStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("Quotation %s is now %s\n", q.QuotationNumber, q.Status)
			return nil
		},
	}
}

func newQuotationsAcceptCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept a quotation and create its invoice",
		Long: `Mark a quotation Accepted and create a draft invoice with the same customer, currency and line items.
Running it again on an Accepted quotation retries the invoice creation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dashboardService.AcceptQuotation(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, service.ErrAlreadyInvoiced) {
					return fmt.Errorf("%w; see `biz invoices list`", err)
				}
				return err
			}

			fmt.Printf("Accepted quotation %s\n", result.Quotation.QuotationNumber)
			fmt.Printf("Created invoice %s (ID: %s, Due: %s, Total: %s)\n",
				result.Invoice.InvoiceNumber,
				result.Invoice.ID,
				result.Invoice.DueDate,
				formatMoney(result.Invoice.TotalAmount, result.Invoice.Currency))
			if result.MarkErr != nil {
				fmt.Printf("Warning: the quotation could not be marked Invoiced: %v\n", result.MarkErr)
			}
			return nil
		},
	}
}

func newQuotationsPDFCmd(dashboardService *service.DashboardService) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Download the quotation PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := dashboardService.QuotationPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = fmt.Sprintf("quotation_%s.pdf", args[0])
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			fmt.Printf("Saved %s (%d bytes)\n", path, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default quotation_<id>.pdf)")
	return cmd
}

func newQuotationsSendCmd(dashboardService *service.DashboardService) *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Email the quotation PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &api.EmailRequest{RecipientEmail: to, Subject: utils.ToPtrNil(subject), Body: utils.ToPtrNil(body)}
			if err := dashboardService.SendQuotation(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Printf("Sent quotation %s to %s\n", args[0], req.RecipientEmail)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&body, "body", "", "Email body")
	cmd.MarkFlagRequired("to")

	return cmd
}

func newQuotationsRemoveItemCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <id> <position>",
		Short: "Remove a line item (positions start at 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			q, err := dashboardService.RemoveQuotationItem(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			fmt.Printf("Removed item %s from %s (Total: %s)\n", args[1], q.QuotationNumber, formatMoney(q.TotalAmount, q.Currency))
			return nil
		},
	}
}
