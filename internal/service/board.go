package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/progress"
)

var (
	ErrSuperseded      = errors.New("task list fetch superseded by a newer one")
	ErrNotDropTarget   = errors.New("column is not a drop target")
	ErrDerivedProgress = errors.New("progress of this task is derived from its target or steps")
	ErrTaskNotOnBoard  = errors.New("task is not on the board")
)

type Column = models.TaskStatus

// Columns lists the board columns in display order.
var Columns = []Column{
	models.TaskStatusToDo,
	models.TaskStatusInProgress,
	models.TaskStatusDone,
	models.TaskStatusOverdue,
	models.TaskStatusArchived,
}

type ColumnView struct {
	Name  Column
	Tasks []models.Task
}

// TaskBoard is the in-memory task list behind the kanban view. Refresh is
// latest-wins: starting a fetch cancels the one in flight and a superseded
// result is never stored.
type TaskBoard struct {
	svc *DashboardService

	mu     sync.Mutex
	tasks  []models.Task
	gen    uint64
	cancel context.CancelFunc
}

func (s *DashboardService) NewTaskBoard() *TaskBoard {
	return &TaskBoard{svc: s}
}

func (b *TaskBoard) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	gen := b.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	tasks, err := b.svc.api.ListTasks(fetchCtx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return ErrSuperseded
	}
	b.cancel = nil
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	b.tasks = tasks
	return nil
}

func (b *TaskBoard) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// View groups the tasks by effective status.
func (b *TaskBoard) View(filter TaskFilter) []ColumnView {
	tasks := b.svc.filterTasks(b.Tasks(), filter)

	byColumn := make(map[Column][]models.Task, len(Columns))
	for _, t := range tasks {
		byColumn[t.Status] = append(byColumn[t.Status], t)
	}

	view := make([]ColumnView, 0, len(Columns))
	for _, col := range Columns {
		view = append(view, ColumnView{Name: col, Tasks: byColumn[col]})
	}
	return view
}

// MoveTask handles a drop of task id onto column. The board is patched first and
// reloaded from the server if the write fails.
func (b *TaskBoard) MoveTask(ctx context.Context, id string, column Column) (*models.Task, error) {
	task, ok := b.find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotOnBoard, id)
	}

	switch column {
	case models.TaskStatusArchived:
		return b.Archive(ctx, id)
	case models.TaskStatusToDo, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotDropTarget, column)
	}

	if task.ProgressMode != models.ProgressModeManual {
		return nil, fmt.Errorf("%w: %s", ErrDerivedProgress, task.Title)
	}

	pct := dropPercentage(column, task.ProgressPercentage.Int())
	b.patch(id, func(t *models.Task) {
		t.ProgressPercentage = models.ClampPercent(pct)
		t.Status = column
	})

	updated, err := b.svc.setManual(ctx, id, pct, true)
	return b.settle(ctx, id, updated, err)
}

func (b *TaskBoard) Archive(ctx context.Context, id string) (*models.Task, error) {
	b.patch(id, func(t *models.Task) { t.Status = models.TaskStatusArchived })
	updated, err := b.svc.ArchiveTask(ctx, id)
	return b.settle(ctx, id, updated, err)
}

func (b *TaskBoard) Unarchive(ctx context.Context, id string) (*models.Task, error) {
	today := b.svc.Today()
	b.patch(id, func(t *models.Task) { t.Status = progress.Unarchive(t, today) })
	updated, err := b.svc.UnarchiveTask(ctx, id)
	return b.settle(ctx, id, updated, err)
}

// settle stores the server's copy after a successful write, or reloads the
// whole board to undo the optimistic patch.
func (b *TaskBoard) settle(ctx context.Context, id string, updated *models.Task, err error) (*models.Task, error) {
	if err != nil {
		if rerr := b.Refresh(ctx); rerr != nil && !errors.Is(rerr, ErrSuperseded) {
			b.svc.log.Warn().Err(rerr).Str("task_id", id).Msg("failed to reload board after a failed write")
		}
		return nil, err
	}
	b.patch(id, func(t *models.Task) { *t = *updated })
	return updated, nil
}

func dropPercentage(column Column, current int) int {
	switch column {
	case models.TaskStatusToDo:
		return 0
	case models.TaskStatusDone:
		return 100
	default:
		if current >= 1 && current <= 99 {
			return current
		}
		return 50
	}
}

func (b *TaskBoard) find(id string) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (b *TaskBoard) patch(id string, fn func(*models.Task)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			fn(&b.tasks[i])
			return
		}
	}
}
