package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newPaymentsCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Record and reverse invoice payments",
		Long:  "Record payments against an invoice's balance due, list them, and reverse them into a bank or cash account.",
	}

	cmd.AddCommand(newPaymentsListCmd(dashboardService))
	cmd.AddCommand(newPaymentsRecordCmd(dashboardService))
	cmd.AddCommand(newPaymentsReverseCmd(dashboardService))

	return cmd
}

func printPaymentState(state *service.PaymentState, currency string) {
	fmt.Println("Payments:")
	if len(state.Payments) == 0 {
		fmt.Println("  No payments recorded.")
	}
	for _, p := range state.Payments {
		fmt.Printf("  %s | %s | %s", p.ID, p.PaymentDate, formatMoney(p.AmountPaid, currency))
		if notes := utils.FromPtr(p.Notes); notes != "" {
			fmt.Printf(" | %s", notes)
		}
		fmt.Println()
	}
	fmt.Printf("Total paid: %s\n", formatMoney(state.Summary.TotalPaid, currency))
	fmt.Printf("Balance due: %s\n", formatMoney(state.Summary.BalanceDue, currency))
}

func newPaymentsListCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "list <invoice-id>",
		Short: "List the payments of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := dashboardService.PaymentState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPaymentState(state, "")
			return nil
		},
	}
}

func newPaymentsRecordCmd(dashboardService *service.DashboardService) *cobra.Command {
	var amount, account, date, notes string

	cmd := &cobra.Command{
		Use:   "record <invoice-id>",
		Short: "Record a payment",
		Long:  "Record a payment into a bank or cash account. The amount must be greater than 0 and no more than the balance due.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paid, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}
			paymentDate, err := parseDate(date)
			if err != nil {
				return err
			}

			state, err := dashboardService.RecordPayment(cmd.Context(), args[0], &models.Payment{
				AmountPaid:  paid,
				PaymentDate: paymentDate,
				AccountID:   account,
				Notes:       utils.ToPtrNil(notes),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded payment of %s\n", paid.StringFixed(2))
			printPaymentState(state, "")
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount paid")
	cmd.Flags().StringVarP(&account, "account", "a", "", "Bank or cash account ID or code")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Payment date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Payment reference or notes")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("account")

	return cmd
}

func newPaymentsReverseCmd(dashboardService *service.DashboardService) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "reverse <invoice-id> <payment-id>",
		Short: "Reverse a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := dashboardService.ReversePayment(cmd.Context(), args[0], args[1], account)
			if err != nil {
				return err
			}

			fmt.Printf("Reversed payment %s\n", args[1])
			printPaymentState(state, "")
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "Bank or cash account ID or code to book the reversal against")
	cmd.MarkFlagRequired("account")

	return cmd
}
