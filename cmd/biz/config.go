package main

import (
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/service"
)

func newConfigCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration",
		Long:  "Print the configuration loaded from the environment, .env and global flags. The API token is never printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboardService.Config().Dump()
			return nil
		},
	}
}
