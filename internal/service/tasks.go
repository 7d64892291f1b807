package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/progress"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

var (
	ErrWrongMode     = errors.New("task is not in the required progress mode")
	ErrStepNotFound  = errors.New("step does not exist")
	ErrAlreadyAtGoal = errors.New("task has already reached its goal")
)

type TaskFilter struct {
	Status     models.TaskStatus
	ProjectID  string
	AssigneeID string
	Search     string
}

// ListTasks returns tasks matching filter, with Status replaced by the effective
// status, ordered by due date (undated last) then title.
func (s *DashboardService) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.filterTasks(tasks, filter), nil
}

func (s *DashboardService) filterTasks(tasks []models.Task, filter TaskFilter) []models.Task {
	today := s.Today()
	for i := range tasks {
		tasks[i].Status = progress.Effective(&tasks[i], today)
		tasks[i].ProgressPercentage = models.Percent(progress.Percentage(&tasks[i]))
	}

	out := utils.Filter(tasks, func(t models.Task) bool {
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.ProjectID != "" && utils.FromPtr(t.ProjectID) != filter.ProjectID {
			return false
		}
		if filter.AssigneeID != "" && utils.FromPtr(t.AssigneeID) != filter.AssigneeID {
			return false
		}
		if filter.Search != "" {
			return utils.ContainsFold(t.Title, filter.Search) ||
				utils.ContainsFold(utils.FromPtr(t.Description), filter.Search)
		}
		return true
	})

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		if a.Valid() != b.Valid() {
			return a.Valid()
		}
		if !a.Equal(b.Time) {
			return a.Before(b.Time)
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

func (s *DashboardService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.api.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return task, nil
}

// CreateTask creates a task and, for steps mode, posts its initial steps.
func (s *DashboardService) CreateTask(ctx context.Context, in *api.TaskInput, steps []models.Step) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("task title cannot be empty")
	}
	if in.ProgressMode == "" {
		in.ProgressMode = models.ProgressModeManual
	}
	if !in.ProgressMode.Valid() {
		return nil, progress.ErrUnknownMode
	}
	if len(steps) > 0 && in.ProgressMode != models.ProgressModeSteps {
		return nil, fmt.Errorf("%w: steps need progress mode steps", ErrWrongMode)
	}

	draft := &models.Task{
		ID:                 "new",
		Status:             in.Status,
		DueDate:            in.DueDate,
		ProgressMode:       in.ProgressMode,
		ProgressPercentage: models.ClampPercent(in.ProgressPercentage),
		ProgressGoal:       in.ProgressGoal,
		ProgressCurrent:    in.ProgressCurrent,
		Steps:              steps,
	}
	update, err := progress.Transition(draft, s.Today())
	if err != nil {
		return nil, err
	}
	in.ProgressPercentage = update.ProgressPercentage
	if update.Status != nil {
		in.Status = *update.Status
	}

	task, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	for i := range draft.Steps {
		if err := s.api.AddTaskStep(ctx, task.ID, &draft.Steps[i]); err != nil {
			return nil, fmt.Errorf("failed to add step %q: %w", draft.Steps[i].Title, err)
		}
	}
	if len(draft.Steps) == 0 {
		return task, nil
	}
	return s.GetTask(ctx, task.ID)
}

func (s *DashboardService) UpdateTask(ctx context.Context, id string, edit func(*api.TaskInput) error) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	in := api.TaskInputFrom(task)
	if err := edit(in); err != nil {
		return nil, err
	}
	if err := s.api.UpdateTask(ctx, id, in); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.GetTask(ctx, id)
}

func (s *DashboardService) DeleteTask(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// applyProgress fetches the task fresh, lets mutate edit its progress fields and
// writes the result with one progress request carrying fields, percentage and
// status. The task is refetched afterwards so callers see the server's view.
func (s *DashboardService) applyProgress(ctx context.Context, id string, mutate func(*models.Task) error) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}

	update, err := progress.Transition(task, s.Today())
	if err != nil {
		return nil, err
	}
	if err := s.api.UpdateTaskProgress(ctx, id, update); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	event := s.log.Info().Str("task_id", id).Int("progress", update.ProgressPercentage)
	if update.Status != nil {
		event = event.Str("status", string(*update.Status))
	}
	event.Msg("task progress updated")

	return s.GetTask(ctx, id)
}

// SetManualProgress switches the task to manual mode at pct (clamped to 0..100).
func (s *DashboardService) SetManualProgress(ctx context.Context, id string, pct int) (*models.Task, error) {
	return s.setManual(ctx, id, pct, false)
}

func (s *DashboardService) setManual(ctx context.Context, id string, pct int, unarchive bool) (*models.Task, error) {
	return s.applyProgress(ctx, id, func(t *models.Task) error {
		t.ProgressMode = models.ProgressModeManual
		t.ProgressPercentage = models.ClampPercent(pct)
		if unarchive && t.Status == models.TaskStatusArchived {
			// Clearing the stored status forces the derived one into the write.
			t.Status = ""
		}
		return nil
	})
}

// SetTargetProgress switches the task to target mode with the given goal and current value.
func (s *DashboardService) SetTargetProgress(ctx context.Context, id string, goal, current float64) (*models.Task, error) {
	return s.applyProgress(ctx, id, func(t *models.Task) error {
		t.ProgressMode = models.ProgressModeTarget
		t.ProgressGoal = &goal
		t.ProgressCurrent = &current
		return nil
	})
}

// IncrementTargetProgress adds n to a target task's current value, trimming the
// increment so the goal is never passed.
func (s *DashboardService) IncrementTargetProgress(ctx context.Context, id string, n float64) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.ProgressMode != models.ProgressModeTarget {
		return nil, fmt.Errorf("%w: %s uses %s", ErrWrongMode, task.Title, task.ProgressMode)
	}

	current := utils.FromPtr(task.ProgressCurrent)
	next, pct, err := progress.IncrementTarget(current, utils.FromPtr(task.ProgressGoal), n)
	if err != nil {
		return nil, err
	}
	if next == current {
		return nil, ErrAlreadyAtGoal
	}

	task.ProgressCurrent = &next
	update, err := progress.Transition(task, s.Today())
	if err != nil {
		return nil, err
	}
	req := &api.IncrementRequest{Increment: next - current, ProgressPercentage: pct, Status: update.Status}
	if err := s.api.IncrementTaskProgress(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to increment progress: %w", err)
	}
	return s.GetTask(ctx, id)
}

// SetSteps replaces the step list and switches the task to steps mode.
func (s *DashboardService) SetSteps(ctx context.Context, id string, steps []models.Step) (*models.Task, error) {
	return s.applyProgress(ctx, id, func(t *models.Task) error {
		t.ProgressMode = models.ProgressModeSteps
		t.Steps = steps
		return nil
	})
}

func (s *DashboardService) AddStep(ctx context.Context, id, title string, weight int) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("step title cannot be empty")
	}
	return s.applyProgress(ctx, id, func(t *models.Task) error {
		if t.ProgressMode != models.ProgressModeSteps {
			return fmt.Errorf("%w: %s uses %s", ErrWrongMode, t.Title, t.ProgressMode)
		}
		t.Steps = append(t.Steps, models.Step{Title: strings.TrimSpace(title), Weight: weight})
		return nil
	})
}

// ToggleStep flips the done flag of the step at index (0-based).
func (s *DashboardService) ToggleStep(ctx context.Context, id string, index int) (*models.Task, error) {
	return s.applyProgress(ctx, id, func(t *models.Task) error {
		if t.ProgressMode != models.ProgressModeSteps {
			return fmt.Errorf("%w: %s uses %s", ErrWrongMode, t.Title, t.ProgressMode)
		}
		if index < 0 || index >= len(t.Steps) {
			return fmt.Errorf("%w: %d", ErrStepNotFound, index+1)
		}
		t.Steps[index].IsDone = !t.Steps[index].IsDone
		return nil
	})
}

// ArchiveTask stores Archived as the task's status. Progress edits never
// overwrite it afterwards.
func (s *DashboardService) ArchiveTask(ctx context.Context, id string) (*models.Task, error) {
	return s.setStatus(ctx, id, func(*models.Task) models.TaskStatus {
		return models.TaskStatusArchived
	})
}

// UnarchiveTask restores the status derived from the task's progress and due date.
func (s *DashboardService) UnarchiveTask(ctx context.Context, id string) (*models.Task, error) {
	today := s.Today()
	return s.setStatus(ctx, id, func(t *models.Task) models.TaskStatus {
		return progress.Unarchive(t, today)
	})
}

func (s *DashboardService) setStatus(ctx context.Context, id string, next func(*models.Task) models.TaskStatus) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	in := api.TaskInputFrom(task)
	in.Status = next(task)
	if err := s.api.UpdateTask(ctx, id, in); err != nil {
		return nil, fmt.Errorf("failed to set task status: %w", err)
	}
	return s.GetTask(ctx, id)
}
