// Package progress derives a task's completion percentage from its progress mode
// and maps that percentage, the due date and the archived flag to an effective status.
package progress

import (
	"errors"
	"math"
	"time"

	"github.com/jesses-code-adventures/biz/internal/models"
)

var (
	ErrNoGoal            = errors.New("target progress requires a goal greater than zero")
	ErrCurrentAboveGoal  = errors.New("current progress cannot exceed the goal")
	ErrNegativeIncrement = errors.New("increment must be positive")
	ErrUnknownMode       = errors.New("unknown progress mode")
)

// Percentage returns the canonical percentage for the task's progress mode.
func Percentage(task *models.Task) int {
	switch task.ProgressMode {
	case models.ProgressModeTarget:
		return TargetPercentage(deref(task.ProgressCurrent), deref(task.ProgressGoal))
	case models.ProgressModeSteps:
		return StepsPercentage(task.Steps)
	default:
		return models.ClampPercent(task.ProgressPercentage.Int()).Int()
	}
}

// TargetPercentage is round(100*current/goal) clamped to [0,100], or 0 without a goal.
func TargetPercentage(current, goal float64) int {
	if goal <= 0 {
		return 0
	}
	return models.ClampPercentFloat(100 * current / goal).Int()
}

// StepsPercentage weights each step; a list with no total weight is 0%.
func StepsPercentage(steps []models.Step) int {
	total, done := 0, 0
	for _, step := range steps {
		total += step.Weight
		if step.IsDone {
			done += step.Weight
		}
	}
	if total <= 0 {
		return 0
	}
	return models.ClampPercentFloat(100 * float64(done) / float64(total)).Int()
}

// IncrementTarget adds n to current without passing goal.
func IncrementTarget(current, goal, n float64) (float64, int, error) {
	if goal <= 0 {
		return current, 0, ErrNoGoal
	}
	if n <= 0 {
		return current, TargetPercentage(current, goal), ErrNegativeIncrement
	}
	next := math.Min(current+n, goal)
	return next, TargetPercentage(next, goal), nil
}

// BaseStatus maps a percentage to To Do, In Progress or Done.
func BaseStatus(pct int) models.TaskStatus {
	switch {
	case pct >= 100:
		return models.TaskStatusDone
	case pct >= 1:
		return models.TaskStatusInProgress
	default:
		return models.TaskStatusToDo
	}
}

// IsPastDue reports whether due is strictly before today, compared by calendar day.
func IsPastDue(due models.Date, today time.Time) bool {
	return due.IsPast(today)
}

// Effective is the status the UI shows, recomputed from percentage, due date and
// the archived flag rather than trusted from the server.
func Effective(task *models.Task, today time.Time) models.TaskStatus {
	if task.Status == models.TaskStatusArchived {
		return models.TaskStatusArchived
	}
	return Unarchive(task, today)
}

// Unarchive returns the status a task should take when it leaves the archive.
func Unarchive(task *models.Task, today time.Time) models.TaskStatus {
	pct := Percentage(task)
	return overlay(BaseStatus(pct), pct, task.DueDate, today)
}

func overlay(base models.TaskStatus, pct int, due models.Date, today time.Time) models.TaskStatus {
	if base != models.TaskStatusDone && pct < 100 && IsPastDue(due, today) {
		return models.TaskStatusOverdue
	}
	return base
}

// ShouldMarkOverdue is the sweep predicate for tasks.
func ShouldMarkOverdue(task *models.Task, today time.Time) bool {
	switch task.Status {
	case models.TaskStatusDone, models.TaskStatusArchived, models.TaskStatusOverdue:
		return false
	}
	if Percentage(task) >= 100 {
		return false
	}
	return IsPastDue(task.DueDate, today)
}

// Transition builds the single progress write for a task whose progress fields
// have already been edited in place. The status is only included when it differs
// from the last known status and the task is not archived.
func Transition(task *models.Task, today time.Time) (*models.ProgressUpdate, error) {
	if !task.ProgressMode.Valid() {
		return nil, ErrUnknownMode
	}
	update := &models.ProgressUpdate{ProgressMode: task.ProgressMode}

	switch task.ProgressMode {
	case models.ProgressModeTarget:
		goal, current := deref(task.ProgressGoal), deref(task.ProgressCurrent)
		if goal <= 0 {
			return nil, ErrNoGoal
		}
		if current > goal {
			return nil, ErrCurrentAboveGoal
		}
		update.ProgressGoal = &goal
		update.ProgressCurrent = &current
	case models.ProgressModeSteps:
		task.Steps = normalizeSteps(task.Steps)
		update.Steps = task.Steps
	}

	update.ProgressPercentage = Percentage(task)

	if task.Status != models.TaskStatusArchived {
		next := overlay(BaseStatus(update.ProgressPercentage), update.ProgressPercentage, task.DueDate, today)
		if next != task.Status {
			update.Status = &next
		}
	}
	return update, nil
}

func normalizeSteps(steps []models.Step) []models.Step {
	out := make([]models.Step, len(steps))
	for i, step := range steps {
		step.Position = i
		if step.Weight < 0 {
			step.Weight = 0
		}
		out[i] = step
	}
	return out
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
