package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newProjectsCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		Long:  "Commands for managing projects. Project progress is the average progress of its tasks.",
	}

	cmd.AddCommand(newProjectsListCmd(dashboardService))
	cmd.AddCommand(newProjectsShowCmd(dashboardService))
	cmd.AddCommand(newProjectsCreateCmd(dashboardService))
	cmd.AddCommand(newProjectsUpdateCmd(dashboardService))
	cmd.AddCommand(newProjectsDeleteCmd(dashboardService))

	return cmd
}

func newProjectsListCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := dashboardService.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			for _, project := range projects {
				fmt.Printf("%s | %-30s | %-10s | %s | %s - %s\n",
					project.ID,
					project.Name,
					orDash(project.Status),
					progressBar(project.ProgressPercentage),
					orDash(project.StartDate.String()),
					orDash(project.EndDate.String()))
			}
			return nil
		},
	}
}

func newProjectsShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, tasks, err := dashboardService.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Project: %s (ID: %s)\n", project.Name, project.ID)
			fmt.Printf("Status: %s\n", orDash(project.Status))
			fmt.Printf("Dates: %s - %s\n", orDash(project.StartDate.String()), orDash(project.EndDate.String()))
			fmt.Printf("Progress: %s\n", progressBar(project.ProgressPercentage))
			if project.Description != nil && *project.Description != "" {
				fmt.Printf("Description: %s\n", *project.Description)
			}

			if len(tasks) == 0 {
				fmt.Println("\nNo tasks in this project.")
				return nil
			}
			fmt.Println("\nTasks:")
			for _, task := range tasks {
				fmt.Printf("  %s | %s | %s | %s\n", task.ID, task.Title, task.Status, progressBar(task.ProgressPercentage.Int()))
			}
			return nil
		},
	}
}

func newProjectsCreateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var name, description, status, start, end string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate(start)
			if err != nil {
				return err
			}
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			project, err := dashboardService.CreateProject(cmd.Context(), &api.ProjectInput{
				Name:        name,
				Description: utils.ToPtrNil(description),
				Status:      status,
				StartDate:   startDate,
				EndDate:     endDate,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created project %s (ID: %s)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().StringVarP(&status, "status", "s", "Active", "Project status")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectsUpdateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var name, description, status, start, end string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Long:  "Update attributes of a project. Only flags that are given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			startDate, err := parseDate(start)
			if err != nil {
				return err
			}
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			project, err := dashboardService.UpdateProject(cmd.Context(), args[0], func(in *api.ProjectInput) {
				if flags.Changed("name") {
					in.Name = name
				}
				if flags.Changed("description") {
					in.Description = utils.ToPtrNil(description)
				}
				if flags.Changed("status") {
					in.Status = status
				}
				if flags.Changed("start") {
					in.StartDate = startDate
				}
				if flags.Changed("end") {
					in.EndDate = endDate
				}
			})
			if err != nil {
				return err
			}

			fmt.Printf("Updated project %s (ID: %s)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Project status")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")

	return cmd
}

func newProjectsDeleteCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dashboardService.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted project %s\n", args[0])
			return nil
		},
	}
}
