package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newBankingCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banking",
		Short: "Manage default banking details",
		Long:  "Store your default banking details locally and add them to the notes of quotations and invoices.",
	}

	cmd.AddCommand(newBankingSetCmd(dashboardService))
	cmd.AddCommand(newBankingShowCmd(dashboardService))
	cmd.AddCommand(newBankingImportCmd(dashboardService))
	cmd.AddCommand(newBankingExportCmd(dashboardService))
	cmd.AddCommand(newBankingApplyCmd(dashboardService))

	return cmd
}

func newBankingSetCmd(dashboardService *service.DashboardService) *cobra.Command {
	var accountName, bankName, accountNumber, branchCode, accountType, swiftCode, reference string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save default banking details",
		RunE: func(cmd *cobra.Command, args []string) error {
			details := &models.BankingDetails{
				AccountName:   accountName,
				BankName:      bankName,
				AccountNumber: accountNumber,
				BranchCode:    branchCode,
				AccountType:   utils.ToPtrNil(accountType),
				SwiftCode:     utils.ToPtrNil(swiftCode),
				ReferenceHint: utils.ToPtrNil(reference),
			}
			if err := dashboardService.SaveBankingDetails(cmd.Context(), details); err != nil {
				return err
			}
			fmt.Println("Saved default banking details.")
			return nil
		},
	}

	cmd.Flags().StringVar(&accountName, "account-name", "", "Account holder name")
	cmd.Flags().StringVar(&bankName, "bank", "", "Bank name")
	cmd.Flags().StringVar(&accountNumber, "account-number", "", "Account number")
	cmd.Flags().StringVar(&branchCode, "branch-code", "", "Branch code")
	cmd.Flags().StringVar(&accountType, "account-type", "", "Account type (e.g. Cheque)")
	cmd.Flags().StringVar(&swiftCode, "swift", "", "SWIFT code")
	cmd.Flags().StringVar(&reference, "reference", "", "Payment reference hint")

	return cmd
}

func newBankingShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the block added to document notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := dashboardService.BankingDetails(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(billing.FormatBankingBlock(details))
			return nil
		},
	}
}

func newBankingImportCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load default banking details from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			details, err := dashboardService.ImportBankingDetails(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Printf("Imported banking details for %s (%s)\n", details.AccountName, details.BankName)
			return nil
		},
	}
}

func newBankingExportCmd(dashboardService *service.DashboardService) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write default banking details as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return dashboardService.ExportBankingDetails(cmd.Context(), os.Stdout)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			if err := dashboardService.ExportBankingDetails(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Printf("Exported banking details to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newBankingApplyCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Add the banking block to a document's notes",
		Long:  "Add the default banking details to the notes of a quotation or invoice, replacing any banking block already there.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "quotation <id>",
		Short: "Apply to a quotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := dashboardService.ApplyBankingToQuotation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Updated banking details on quotation %s\n", q.QuotationNumber)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "invoice <id>",
		Short: "Apply to an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := dashboardService.ApplyBankingToInvoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Updated banking details on invoice %s\n", inv.InvoiceNumber)
			return nil
		},
	})

	return cmd
}
