package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/service"
)

func newBoardCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Kanban view of tasks",
		Long:  "Show tasks grouped into To Do, In Progress, Done, Overdue and Archived columns, and move tasks between them.",
	}

	cmd.AddCommand(newBoardShowCmd(dashboardService))
	cmd.AddCommand(newBoardMoveCmd(dashboardService))

	return cmd
}

func newBoardShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	var project, assignee, search string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			board := dashboardService.NewTaskBoard()
			if err := board.Refresh(cmd.Context()); err != nil {
				return err
			}

			view := board.View(service.TaskFilter{ProjectID: project, AssigneeID: assignee, Search: search})
			for _, column := range view {
				fmt.Printf("== %s (%d) ==\n", column.Name, len(column.Tasks))
				for _, task := range column.Tasks {
					fmt.Printf("  %s | %s | %s | Due: %s\n",
						task.ID,
						task.Title,
						progressBar(task.ProgressPercentage.Int()),
						orDash(task.DueDate.String()))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only show tasks in this project (ID)")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Only show tasks assigned to this user (ID)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match text in the title or description")

	return cmd
}

func newBoardMoveCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <column>",
		Short: "Move a task to another column",
		Long: `Move a manual-progress task to another column:
  To Do        progress 0%
  In Progress  keeps a progress of 1-99%, otherwise 50%
  Done         progress 100%
  Archived     archives the task
Overdue is derived from the due date and cannot be chosen.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			column, err := matchStatus(args[1], service.Columns)
			if err != nil {
				return err
			}

			board := dashboardService.NewTaskBoard()
			if err := board.Refresh(ctx); err != nil {
				return err
			}
			task, err := board.MoveTask(ctx, args[0], column)
			if err != nil {
				return err
			}

			fmt.Printf("Moved %s to %s\n", task.Title, column)
			printTask(task)
			return nil
		},
	}
}
