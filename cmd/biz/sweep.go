package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/service"
)

func newSweepCmd(dashboardService *service.DashboardService) *cobra.Command {
	var dryRun, now bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire quotations and mark invoices and tasks overdue",
		Long: `Move every quotation past its expiry date to Expired and every invoice or task past its
due date to Overdue. Accepted, declined and invoiced quotations, paid invoices and finished
or archived tasks are left alone. Updates are sent after SWEEP_DELAY unless --now is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := service.SweepOptions{DryRun: dryRun, Delay: -1}
			if now {
				opts.Delay = 0
			}

			report, err := dashboardService.Sweep(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if len(report.Changes) == 0 {
				fmt.Printf("Nothing to update (%d records checked).\n", report.Scanned)
				return nil
			}

			verb := "Updated"
			if report.DryRun {
				verb = "Would update"
			}
			for _, c := range report.Changes {
				line := fmt.Sprintf("%s %s %s: %s -> %s", verb, c.Kind, c.Label, c.From, c.To)
				if c.Err != nil {
					line += fmt.Sprintf(" (failed: %v)", c.Err)
				}
				fmt.Println(line)
			}
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d updates failed", failed, len(report.Changes))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the changes without sending them")
	cmd.Flags().BoolVar(&now, "now", false, "Skip the SWEEP_DELAY wait")

	cmd.AddCommand(newSweepHistoryCmd(dashboardService))
	return cmd
}

func newSweepHistoryCmd(dashboardService *service.DashboardService) *cobra.Command {
	var limit int32

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sweep updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := dashboardService.SweepHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No sweep updates recorded.")
				return nil
			}

			for _, e := range entries {
				result := "ok"
				if e.Error != nil {
					result = "failed: " + *e.Error
				}
				fmt.Printf("%s | %s %s | %s -> %s | %s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					e.Kind,
					e.Label,
					e.FromStatus,
					e.ToStatus,
					result)
			}
			return nil
		},
	}

	cmd.Flags().Int32VarP(&limit, "limit", "l", 20, "Number of entries to show")
	return cmd
}
