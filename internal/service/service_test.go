package service

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/apitest"
	"github.com/jesses-code-adventures/biz/internal/auth"
	"github.com/jesses-code-adventures/biz/internal/config"
	"github.com/jesses-code-adventures/biz/internal/database"
	"github.com/jesses-code-adventures/biz/internal/logging"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/progress"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

const testToken = "secret-token"

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

type fixture struct {
	fake *apitest.Fake
	db   *database.SQLiteDB
	svc  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := apitest.New(testToken)
	url := fake.Start(t)

	cfg := &config.Config{
		APIBaseURL:     url,
		DatabaseURL:    filepath.Join(t.TempDir(), "biz.db"),
		DatabaseDriver: "sqlite3",
		InvoicePrefix:  "INV",
		InvoiceDueDays: 7,
		SweepDelay:     time.Hour,
	}
	db, err := database.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := api.NewClient(url, auth.New(testToken), logging.Nop())
	svc := NewDashboardService(client, db, cfg, logging.Nop(), WithClock(func() time.Time { return now }))
	return &fixture{fake: fake, db: db, svc: svc}
}

func day(offset int) models.Date {
	return models.NewDate(now.AddDate(0, 0, offset))
}

func decodeBody(t *testing.T, r apitest.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &body))
	return body
}

func TestSetManualProgressIsOneWrite(t *testing.T) {
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "t1", Title: "Draft proposal", Status: models.TaskStatusToDo, DueDate: day(3)})

	task, err := f.svc.SetManualProgress(context.Background(), "t1", 40)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, models.Percent(40), task.ProgressPercentage)

	writes := f.fake.Requests("PUT ")
	require.Len(t, writes, 1)
	assert.Equal(t, "/api/tasks/t1/progress", writes[0].Path)
	body := decodeBody(t, writes[0])
	assert.EqualValues(t, 40, body["progress_percentage"])
	assert.Equal(t, "In Progress", body["status"])
}

func TestSetManualProgressClamps(t *testing.T) {
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "t1", Title: "Clamp", Status: models.TaskStatusInProgress, ProgressPercentage: 20})

	task, err := f.svc.SetManualProgress(context.Background(), "t1", 140)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(100), task.ProgressPercentage)
	assert.Equal(t, models.TaskStatusDone, task.Status)
}

func TestProgressNeverOverwritesArchived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddTask(models.Task{ID: "t1", Title: "Old work", Status: models.TaskStatusArchived, ProgressPercentage: 10})

	_, err := f.svc.SetManualProgress(ctx, "t1", 100)
	require.NoError(t, err)

	writes := f.fake.Requests("PUT /api/tasks/t1/progress")
	require.Len(t, writes, 1)
	assert.NotContains(t, decodeBody(t, writes[0]), "status")
	assert.Equal(t, models.TaskStatusArchived, f.fake.Task("t1").Status)

	task, err := f.svc.UnarchiveTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)
}

func TestListTasksDerivesEffectiveStatus(t *testing.T) {
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "late", Title: "Late", Status: models.TaskStatusInProgress, ProgressPercentage: 40, DueDate: day(-1)})
	f.fake.AddTask(models.Task{ID: "done", Title: "Done", Status: models.TaskStatusInProgress, ProgressPercentage: 100, DueDate: day(-1)})
	f.fake.AddTask(models.Task{ID: "today", Title: "Today", Status: models.TaskStatusToDo, DueDate: day(0)})
	f.fake.AddTask(models.Task{ID: "nodate", Title: "Someday", Status: models.TaskStatusToDo})

	tasks, err := f.svc.ListTasks(context.Background(), TaskFilter{})
	require.NoError(t, err)

	got := map[string]models.TaskStatus{}
	var order []string
	for _, task := range tasks {
		got[task.ID] = task.Status
		order = append(order, task.ID)
	}
	assert.Equal(t, models.TaskStatusOverdue, got["late"])
	assert.Equal(t, models.TaskStatusDone, got["done"])
	assert.Equal(t, models.TaskStatusToDo, got["today"])
	assert.Equal(t, "nodate", order[len(order)-1])

	overdue, err := f.svc.ListTasks(context.Background(), TaskFilter{Status: models.TaskStatusOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)

	found, err := f.svc.ListTasks(context.Background(), TaskFilter{Search: "some"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "nodate", found[0].ID)
}

func TestIncrementTargetProgressStopsAtGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddTask(models.Task{ID: "t1", Title: "Calls", Status: models.TaskStatusInProgress,
		ProgressMode: models.ProgressModeTarget, ProgressGoal: utils.ToPtr(10.0), ProgressCurrent: utils.ToPtr(8.0),
		ProgressPercentage: 80})

	task, err := f.svc.IncrementTargetProgress(ctx, "t1", 5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *task.ProgressCurrent)
	assert.Equal(t, models.TaskStatusDone, task.Status)

	posts := f.fake.Requests("POST /api/tasks/t1/progress/increment")
	require.Len(t, posts, 1)
	body := decodeBody(t, posts[0])
	assert.EqualValues(t, 2, body["increment"])
	assert.EqualValues(t, 100, body["progress_percentage"])

	_, err = f.svc.IncrementTargetProgress(ctx, "t1", 1)
	assert.ErrorIs(t, err, ErrAlreadyAtGoal)

	f.fake.AddTask(models.Task{ID: "t2", Title: "Manual"})
	_, err = f.svc.IncrementTargetProgress(ctx, "t2", 1)
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestSetTargetProgressValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddTask(models.Task{ID: "t1", Title: "Target"})

	_, err := f.svc.SetTargetProgress(ctx, "t1", 0, 0)
	assert.ErrorIs(t, err, progress.ErrNoGoal)
	_, err = f.svc.SetTargetProgress(ctx, "t1", 4, 5)
	assert.ErrorIs(t, err, progress.ErrCurrentAboveGoal)
	assert.Empty(t, f.fake.Requests("PUT "))

	task, err := f.svc.SetTargetProgress(ctx, "t1", 4, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(25), task.ProgressPercentage)
	assert.Equal(t, models.ProgressModeTarget, task.ProgressMode)
}

func TestStepsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.AddTask(models.Task{ID: "t1", Title: "Launch", Status: models.TaskStatusInProgress,
		ProgressMode: models.ProgressModeSteps, ProgressPercentage: 25,
		Steps: []models.Step{
			{ID: "s1", Title: "Design", Weight: 1, IsDone: true, Position: 0},
			{ID: "s2", Title: "Build", Weight: 3, Position: 1},
		}})

	task, err := f.svc.ToggleStep(ctx, "t1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.Percent(100), task.ProgressPercentage)
	assert.Equal(t, models.TaskStatusDone, task.Status)

	task, err = f.svc.AddStep(ctx, "t1", "Ship", 4)
	require.NoError(t, err)
	require.Len(t, task.Steps, 3)
	assert.Equal(t, 2, task.Steps[2].Position)
	assert.Equal(t, models.Percent(50), task.ProgressPercentage)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	_, err = f.svc.ToggleStep(ctx, "t1", 7)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestCreateTaskWithSteps(t *testing.T) {
	f := newFixture(t)
	steps := []models.Step{{Title: "Outline", Weight: 1}, {Title: "Write", Weight: 2}}

	task, err := f.svc.CreateTask(context.Background(), &api.TaskInput{
		Title:        "Report",
		ProgressMode: models.ProgressModeSteps,
		DueDate:      day(5),
	}, steps)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusToDo, task.Status)
	require.Len(t, task.Steps, 2)
	assert.Len(t, f.fake.Requests("POST /api/tasks/"+task.ID+"/steps"), 2)

	_, err = f.svc.CreateTask(context.Background(), &api.TaskInput{Title: "Bad"}, steps)
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestArchiveTask(t *testing.T) {
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "t1", Title: "Old", Status: models.TaskStatusDone, ProgressPercentage: 100})

	task, err := f.svc.ArchiveTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusArchived, task.Status)
}

func TestProgressWriteFailureSurfacesServerMessage(t *testing.T) {
	f := newFixture(t)
	f.fake.AddTask(models.Task{ID: "t1", Title: "Broken"})
	f.fake.FailOn(http.MethodPut, "/api/tasks/t1/progress", http.StatusInternalServerError)

	_, err := f.svc.SetManualProgress(context.Background(), "t1", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced failure")
}

func TestProjectProgress(t *testing.T) {
	tasks := []models.Task{
		{ID: "a", ProjectID: utils.ToPtr("p1"), ProgressPercentage: 50},
		{ID: "b", ProjectID: utils.ToPtr("p1"), ProgressMode: models.ProgressModeSteps,
			Steps: []models.Step{{Weight: 1, IsDone: true}, {Weight: 2}}},
		{ID: "c", ProjectID: utils.ToPtr("p2"), ProgressPercentage: 100},
	}
	assert.Equal(t, 42, ProjectProgress("p1", tasks))
	assert.Equal(t, 100, ProjectProgress("p2", tasks))
	assert.Equal(t, 0, ProjectProgress("p3", tasks))
}

func TestListProjectsFillsProgress(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProject(models.Project{ID: "p1", Name: "Website"})
	f.fake.AddTask(models.Task{ID: "t1", Title: "A", ProjectID: utils.ToPtr("p1"), ProgressPercentage: 30})
	f.fake.AddTask(models.Task{ID: "t2", Title: "B", ProjectID: utils.ToPtr("p1"), ProgressPercentage: 60})

	projects, err := f.svc.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 45, projects[0].ProgressPercentage)

	_, err = f.svc.CreateProject(context.Background(), &api.ProjectInput{Name: "Bad", StartDate: day(5), EndDate: day(1)})
	assert.Error(t, err)
}

func TestAuthLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.svc.AuthStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.LoggedIn)

	require.Error(t, f.svc.Login(ctx, "  "))
	require.NoError(t, f.svc.Login(ctx, "opaque-token"))

	token, err := ResolveToken(ctx, f.svc.Config(), f.db)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	status, err = f.svc.AuthStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "saved login", status.Source)

	require.NoError(t, f.svc.Logout(ctx))
	token, err = ResolveToken(ctx, f.svc.Config(), f.db)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)
	profile, err := f.svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thandi@example.com", profile.Email)
}
