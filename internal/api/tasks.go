package api

import (
	"context"
	"net/http"

	"github.com/jesses-code-adventures/biz/internal/models"
)

const tasksPath = "/api/tasks"

// TaskInput is the writable subset of a task.
type TaskInput struct {
	Title              string              `json:"title"`
	Description        *string             `json:"description,omitempty"`
	ProjectID          *string             `json:"project_id,omitempty"`
	AssigneeID         *string             `json:"assignee_id,omitempty"`
	Status             models.TaskStatus   `json:"status,omitempty"`
	Priority           *string             `json:"priority,omitempty"`
	DueDate            models.Date         `json:"due_date"`
	ProgressMode       models.ProgressMode `json:"progress_mode,omitempty"`
	ProgressPercentage int                 `json:"progress_percentage"`
	ProgressGoal       *float64            `json:"progress_goal,omitempty"`
	ProgressCurrent    *float64            `json:"progress_current,omitempty"`
}

// TaskInputFrom copies the writable fields of t.
func TaskInputFrom(t *models.Task) *TaskInput {
	return &TaskInput{
		Title:              t.Title,
		Description:        t.Description,
		ProjectID:          t.ProjectID,
		AssigneeID:         t.AssigneeID,
		Status:             t.Status,
		Priority:           t.Priority,
		DueDate:            t.DueDate,
		ProgressMode:       t.ProgressMode,
		ProgressPercentage: t.ProgressPercentage.Int(),
		ProgressGoal:       t.ProgressGoal,
		ProgressCurrent:    t.ProgressCurrent,
	}
}

// IncrementRequest advances a target-mode task. The percentage and status are
// computed client-side so the server never needs a second write.
type IncrementRequest struct {
	Increment          float64            `json:"increment"`
	ProgressPercentage int                `json:"progress_percentage"`
	Status             *models.TaskStatus `json:"status,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	return getList[models.Task](ctx, c, tasksPath, nil, "tasks")
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodGet, idPath(tasksPath, id), nil, "task")
}

func (c *Client) CreateTask(ctx context.Context, in *TaskInput) (*models.Task, error) {
	return getOne[models.Task](ctx, c, http.MethodPost, tasksPath, in, "task")
}

func (c *Client) UpdateTask(ctx context.Context, id string, in *TaskInput) error {
	return c.call(ctx, http.MethodPut, idPath(tasksPath, id), nil, in, "", nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, idPath(tasksPath, id), nil, nil, "", nil)
}

func (c *Client) UpdateTaskProgress(ctx context.Context, id string, update *models.ProgressUpdate) error {
	return c.call(ctx, http.MethodPut, idPath(tasksPath, id)+"/progress", nil, update, "", nil)
}

func (c *Client) IncrementTaskProgress(ctx context.Context, id string, req *IncrementRequest) error {
	return c.call(ctx, http.MethodPost, idPath(tasksPath, id)+"/progress/increment", nil, req, "", nil)
}

func (c *Client) AddTaskStep(ctx context.Context, id string, step *models.Step) error {
	return c.call(ctx, http.MethodPost, idPath(tasksPath, id)+"/steps", nil, step, "", nil)
}
