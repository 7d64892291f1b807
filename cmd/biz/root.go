package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jesses-code-adventures/biz/internal/service"
)

func newRootCmd(dashboardService *service.DashboardService) *cobra.Command {
	var apiURL, dbConn string

	rootCmd := &cobra.Command{
		Use:   "biz",
		Short: "Command-line dashboard for the business admin API",
		Long: `Manage tasks, projects, quotations, invoices and payments against the business admin API.
Progress, status and totals are derived locally so every change goes out as a single write.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Parsed ahead of config loading by globalFlags; registered here so cobra accepts them.
	addGlobalFlags(rootCmd.PersistentFlags(), &apiURL, &dbConn)

	rootCmd.AddCommand(
		newTasksCmd(dashboardService),
		newProjectsCmd(dashboardService),
		newBoardCmd(dashboardService),
		newQuotationsCmd(dashboardService),
		newInvoicesCmd(dashboardService),
		newPaymentsCmd(dashboardService),
		newCustomersCmd(dashboardService),
		newAccountsCmd(dashboardService),
		newProductsCmd(dashboardService),
		newUsersCmd(dashboardService),
		newWhoAmICmd(dashboardService),
		newBankingCmd(dashboardService),
		newSweepCmd(dashboardService),
		newAuthCmd(dashboardService),
		newConfigCmd(dashboardService),
	)

	return rootCmd
}

func addGlobalFlags(flags *pflag.FlagSet, apiURL, dbConn *string) {
	flags.StringVar(apiURL, "api-url", "", "API base URL (overrides API_BASE_URL)")
	flags.StringVar(dbConn, "db", "", "Local database path (overrides DATABASE_URL)")
}

// globalFlags extracts --api-url and --db before the service exists, ignoring
// every other flag.
func globalFlags(args []string) (apiURL, dbConn string, err error) {
	flags := pflag.NewFlagSet("biz", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}
	addGlobalFlags(flags, &apiURL, &dbConn)

	if err := flags.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return "", "", err
	}
	return apiURL, dbConn, nil
}
