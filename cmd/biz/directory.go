package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newCustomersCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Look up customers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCustomers(cmd, dashboardService, "")
		},
	}
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search customers by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCustomers(cmd, dashboardService, args[0])
		},
	}

	cmd.AddCommand(list, search)
	return cmd
}

func printCustomers(cmd *cobra.Command, dashboardService *service.DashboardService, query string) error {
	customers, err := dashboardService.ListCustomers(cmd.Context(), query)
	if err != nil {
		return err
	}

	if len(customers) == 0 {
		fmt.Println("No customers found.")
		return nil
	}

	for _, c := range customers {
		fmt.Printf("%s | %s | %s\n", c.ID, c.Name, orDash(utils.FromPtr(c.Email)))
	}
	return nil
}

func newAccountsCmd(dashboardService *service.DashboardService) *cobra.Command {
	var paymentOnly bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List ledger accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := dashboardService.ListAccounts(cmd.Context(), paymentOnly)
			if err != nil {
				return err
			}

			if len(accounts) == 0 {
				fmt.Println("No accounts found.")
				return nil
			}

			for _, a := range accounts {
				fmt.Printf("%s | %s | %s | %s\n", a.ID, orDash(a.Code), a.Name, orDash(a.Type))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&paymentOnly, "payment", "p", false, "Only show bank and cash accounts that can receive payments")
	return cmd
}

func newProductsCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := dashboardService.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			if len(products) == 0 {
				fmt.Println("No products or services found.")
				return nil
			}

			for _, p := range products {
				fmt.Printf("%s | %s | %s | tax %s%%\n", p.ID, p.Name, p.UnitPrice.StringFixed(2), p.TaxRate.Shift(2).StringFixed(1))
			}
			return nil
		},
	}
}

func newUsersCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users that tasks can be assigned to",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := dashboardService.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Println("No users found.")
				return nil
			}

			for _, u := range users {
				fmt.Printf("%s | %s | %s\n", u.ID, u.Name, u.Email)
			}
			return nil
		},
	}
}

func newWhoAmICmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := dashboardService.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%s <%s>\n", profile.Name, profile.Email)
			if company := utils.FromPtr(profile.CompanyName); company != "" {
				fmt.Printf("Company: %s\n", company)
			}
			return nil
		},
	}
}
