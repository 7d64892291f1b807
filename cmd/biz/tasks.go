package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newTasksCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks and their progress",
		Long:  "List, create and edit tasks. Progress changes recompute the percentage and status locally and save them in one request.",
	}

	cmd.AddCommand(
		newTasksListCmd(dashboardService),
		newTasksShowCmd(dashboardService),
		newTasksCreateCmd(dashboardService),
		newTasksUpdateCmd(dashboardService),
		newTasksDeleteCmd(dashboardService),
		newTasksProgressCmd(dashboardService),
		newTasksStepsCmd(dashboardService),
		newTasksArchiveCmd(dashboardService),
		newTasksUnarchiveCmd(dashboardService),
	)

	return cmd
}

func newTasksListCmd(dashboardService *service.DashboardService) *cobra.Command {
	var status, project, assignee, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "List tasks ordered by due date. Status filters match the effective status, so overdue tasks show up under Overdue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter := service.TaskFilter{ProjectID: project, AssigneeID: assignee, Search: search}
			if status != "" {
				s, err := matchStatus(status, taskStatuses)
				if err != nil {
					return err
				}
				filter.Status = s
			}

			tasks, err := dashboardService.ListTasks(ctx, filter)
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			for _, task := range tasks {
				fmt.Printf("%s | %-40s | %-11s | %s | Due: %s\n",
					task.ID,
					task.Title,
					task.Status,
					progressBar(task.ProgressPercentage.Int()),
					orDash(task.DueDate.String()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show tasks with this status")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Only show tasks in this project (ID)")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Only show tasks assigned to this user (ID)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match text in the title or description")

	return cmd
}

func newTasksShowCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := dashboardService.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printTask(task)
			if task.Description != nil && *task.Description != "" {
				fmt.Printf("  %s\n", *task.Description)
			}
			for i, step := range task.Steps {
				mark := " "
				if step.IsDone {
					mark = "x"
				}
				fmt.Printf("  %d. [%s] %s (weight %d)\n", i+1, mark, step.Title, step.Weight)
			}
			return nil
		},
	}
}

func newTasksCreateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var title, description, project, assignee, priority, due, mode string
	var goal, current float64
	var pct int
	var steps []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long: `Create a task. The progress mode decides how completion is measured:
  manual  a percentage set directly (--progress)
  target  a numeric goal (--goal, --current)
  steps   a weighted checklist (--step "title:weight", repeatable)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}

			in := &api.TaskInput{
				Title:              title,
				Description:        utils.ToPtrNil(description),
				ProjectID:          utils.ToPtrNil(project),
				AssigneeID:         utils.ToPtrNil(assignee),
				Priority:           utils.ToPtrNil(priority),
				DueDate:            dueDate,
				ProgressMode:       models.ProgressMode(mode),
				ProgressPercentage: pct,
			}
			if in.ProgressMode == models.ProgressModeTarget {
				in.ProgressGoal = &goal
				in.ProgressCurrent = &current
			}

			var parsed []models.Step
			for _, spec := range steps {
				step, err := parseStep(spec)
				if err != nil {
					return err
				}
				parsed = append(parsed, step)
			}

			task, err := dashboardService.CreateTask(ctx, in, parsed)
			if err != nil {
				return err
			}

			fmt.Printf("Created task %s\n", task.ID)
			printTask(task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Assignee user ID")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (e.g. Low, Medium, High)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ProgressModeManual), "Progress mode: manual, target, steps")
	cmd.Flags().IntVar(&pct, "progress", 0, "Initial percentage (manual mode)")
	cmd.Flags().Float64Var(&goal, "goal", 0, "Goal value (target mode)")
	cmd.Flags().Float64Var(&current, "current", 0, "Current value (target mode)")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Step as \"title\" or \"title:weight\" (steps mode, repeatable)")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newTasksUpdateCmd(dashboardService *service.DashboardService) *cobra.Command {
	var title, description, project, assignee, priority, due string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task details",
		Long:  "Change the title, description, project, assignee, priority or due date of a task. Only flags that are given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			task, err := dashboardService.UpdateTask(ctx, args[0], func(in *api.TaskInput) error {
				if flags.Changed("title") {
					in.Title = title
				}
				if flags.Changed("description") {
					in.Description = utils.ToPtrNil(description)
				}
				if flags.Changed("project") {
					in.ProjectID = utils.ToPtrNil(project)
				}
				if flags.Changed("assignee") {
					in.AssigneeID = utils.ToPtrNil(assignee)
				}
				if flags.Changed("priority") {
					in.Priority = utils.ToPtrNil(priority)
				}
				if flags.Changed("due") {
					d, err := parseDate(due)
					if err != nil {
						return err
					}
					in.DueDate = d
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Updated task %s\n", task.ID)
			printTask(task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID (empty to clear)")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "Assignee user ID (empty to clear)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD, empty to clear)")

	return cmd
}

func newTasksDeleteCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dashboardService.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted task %s\n", args[0])
			return nil
		},
	}
}

func newTasksProgressCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Change task progress",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <percentage>",
		Short: "Set a manual percentage (0-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[1])
			}
			task, err := dashboardService.SetManualProgress(cmd.Context(), args[0], pct)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "target <id> <goal> [current]",
		Short: "Measure progress against a numeric goal",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid goal %q", args[1])
			}
			current := 0.0
			if len(args) == 3 {
				if current, err = strconv.ParseFloat(args[2], 64); err != nil {
					return fmt.Errorf("invalid current value %q", args[2])
				}
			}
			task, err := dashboardService.SetTargetProgress(cmd.Context(), args[0], goal, current)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "increment <id> [amount]",
		Short: "Add to the current value of a target task (default 1)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1.0
			if len(args) == 2 {
				var err error
				if n, err = strconv.ParseFloat(args[1], 64); err != nil {
					return fmt.Errorf("invalid amount %q", args[1])
				}
			}
			task, err := dashboardService.IncrementTargetProgress(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	})

	return cmd
}

func newTasksStepsCmd(dashboardService *service.DashboardService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Edit the checklist of a steps task",
	}

	var weight int
	add := &cobra.Command{
		Use:   "add <id> <title>",
		Short: "Append a step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := dashboardService.AddStep(cmd.Context(), args[0], args[1], weight)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	}
	add.Flags().IntVarP(&weight, "weight", "w", 1, "Step weight")

	toggle := &cobra.Command{
		Use:   "toggle <id> <position>",
		Short: "Mark a step done or not done (positions start at 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			task, err := dashboardService.ToggleStep(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <id> <step>...",
		Short: "Replace all steps and switch the task to steps mode",
		Long:  "Each step is \"title\" or \"title:weight\". Existing steps and their done flags are replaced.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := make([]models.Step, 0, len(args)-1)
			for _, spec := range args[1:] {
				step, err := parseStep(spec)
				if err != nil {
					return err
				}
				steps = append(steps, step)
			}
			task, err := dashboardService.SetSteps(cmd.Context(), args[0], steps)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	}

	cmd.AddCommand(add, toggle, set)
	return cmd
}

func newTasksArchiveCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := dashboardService.ArchiveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Archived task %s\n", task.Title)
			return nil
		},
	}
}

func newTasksUnarchiveCmd(dashboardService *service.DashboardService) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Restore an archived task",
		Long:  "Restore an archived task. Its status is derived again from its progress and due date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := dashboardService.UnarchiveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Restored task %s as %s\n", task.Title, task.Status)
			return nil
		},
	}
}
