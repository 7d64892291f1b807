package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/service"
)

func newAuthCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in and out of the API",
	}

	cmd.AddCommand(newAuthLoginCmd(dashboardService))
	cmd.AddCommand(newAuthLogoutCmd(dashboardService))
	cmd.AddCommand(newAuthStatusCmd(dashboardService))

	return cmd
}

func newAuthLoginCmd(dashboardService *service.DashboardService) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API token",
		Long:  "Save a bearer token for later commands. Without --token the token is read from stdin. API_TOKEN takes precedence when set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token from stdin: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			if err := dashboardService.Login(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Bearer token")
	return cmd
}

func newAuthLogoutCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dashboardService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newAuthStatusCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable token is available",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := dashboardService.AuthStatus(cmd.Context())
			if err != nil {
				return err
			}

			if !status.LoggedIn {
				fmt.Println("Not logged in.")
				if status.ExpiresAt != nil {
					fmt.Printf("Token from %s expired at %s\n", status.Source, status.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
				}
				return nil
			}

			fmt.Printf("Logged in (token from %s).\n", status.Source)
			if status.ExpiresAt != nil {
				fmt.Printf("Expires: %s\n", status.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
