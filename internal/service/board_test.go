package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func seedBoard(t *testing.T) (*fixture, *TaskBoard) {
	t.Helper()
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "todo", Title: "Plan", Status: models.TaskStatusToDo, DueDate: day(2)})
	f.fake.AddTask(models.Task{ID: "wip", Title: "Build", Status: models.TaskStatusInProgress, ProgressPercentage: 30, DueDate: day(2)})
	f.fake.AddTask(models.Task{ID: "late", Title: "Invoice", Status: models.TaskStatusInProgress, ProgressPercentage: 60, DueDate: day(-2)})
	f.fake.AddTask(models.Task{ID: "old", Title: "Archive me", Status: models.TaskStatusArchived, ProgressPercentage: 20})
	f.fake.AddTask(models.Task{ID: "target", Title: "Calls", Status: models.TaskStatusInProgress,
		ProgressMode: models.ProgressModeTarget, ProgressGoal: utils.ToPtr(4.0), ProgressCurrent: utils.ToPtr(1.0), ProgressPercentage: 25})

	board := f.svc.NewTaskBoard()
	require.NoError(t, board.Refresh(context.Background()))
	return f, board
}

func columnIDs(view []ColumnView) map[Column][]string {
	out := map[Column][]string{}
	for _, col := range view {
		for _, task := range col.Tasks {
			out[col.Name] = append(out[col.Name], task.ID)
		}
	}
	return out
}

func TestBoardView(t *testing.T) {
	_, board := seedBoard(t)

	view := board.View(TaskFilter{})
	require.Len(t, view, len(Columns))
	assert.Equal(t, models.TaskStatusToDo, view[0].Name)

	cols := columnIDs(view)
	assert.Equal(t, []string{"todo"}, cols[models.TaskStatusToDo])
	assert.ElementsMatch(t, []string{"wip", "target"}, cols[models.TaskStatusInProgress])
	assert.Equal(t, []string{"late"}, cols[models.TaskStatusOverdue])
	assert.Equal(t, []string{"old"}, cols[models.TaskStatusArchived])
}

func TestBoardMoveTask(t *testing.T) {
	f, board := seedBoard(t)
	ctx := context.Background()

	task, err := board.MoveTask(ctx, "todo", models.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(50), task.ProgressPercentage)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	task, err = board.MoveTask(ctx, "wip", models.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(30), task.ProgressPercentage)

	task, err = board.MoveTask(ctx, "wip", models.TaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)

	task, err = board.MoveTask(ctx, "old", models.TaskStatusToDo)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(0), task.ProgressPercentage)
	assert.Equal(t, models.TaskStatusToDo, f.fake.Task("old").Status)

	task, err = board.MoveTask(ctx, "late", models.TaskStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusArchived, task.Status)

	_, err = board.MoveTask(ctx, "todo", models.TaskStatusOverdue)
	assert.ErrorIs(t, err, ErrNotDropTarget)

	_, err = board.MoveTask(ctx, "target", models.TaskStatusDone)
	assert.ErrorIs(t, err, ErrDerivedProgress)

	_, err = board.MoveTask(ctx, "missing", models.TaskStatusDone)
	assert.ErrorIs(t, err, ErrTaskNotOnBoard)
}

func TestBoardRollsBackFailedArchive(t *testing.T) {
	f, board := seedBoard(t)
	f.fake.FailOn(http.MethodPut, "/api/tasks/wip", http.StatusInternalServerError)

	_, err := board.Archive(context.Background(), "wip")
	require.Error(t, err)

	cols := columnIDs(board.View(TaskFilter{}))
	assert.Contains(t, cols[models.TaskStatusInProgress], "wip")
	assert.NotContains(t, cols[models.TaskStatusArchived], "wip")
}

func TestBoardRefreshLatestWins(t *testing.T) {
	f, board := seedBoard(t)

	var calls atomic.Int32
	started := make(chan struct{})
	f.fake.SetBefore(func(r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			return
		}
		if calls.Add(1) == 1 {
			close(started)
			<-r.Context().Done()
		}
	})
	f.fake.AddTask(models.Task{ID: "new", Title: "Fresh", Status: models.TaskStatusToDo})

	first := make(chan error, 1)
	go func() { first <- board.Refresh(context.Background()) }()
	<-started

	require.NoError(t, board.Refresh(context.Background()))
	assert.ErrorIs(t, <-first, ErrSuperseded)

	ids := map[string]bool{}
	for _, task := range board.Tasks() {
		ids[task.ID] = true
	}
	assert.True(t, ids["new"])
}
