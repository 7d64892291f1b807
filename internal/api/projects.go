package api

import (
	"context"
	"net/http"

	"github.com/jesses-code-adventures/biz/internal/models"
)

const projectsPath = "/api/projects"

type ProjectInput struct {
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Status      string      `json:"status,omitempty"`
	StartDate   models.Date `json:"start_date"`
	EndDate     models.Date `json:"end_date"`
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	return getList[models.Project](ctx, c, projectsPath, nil, "projects")
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getOne[models.Project](ctx, c, http.MethodGet, idPath(projectsPath, id), nil, "project")
}

func (c *Client) CreateProject(ctx context.Context, in *ProjectInput) (*models.Project, error) {
	return getOne[models.Project](ctx, c, http.MethodPost, projectsPath, in, "project")
}

func (c *Client) UpdateProject(ctx context.Context, id string, in *ProjectInput) error {
	return c.call(ctx, http.MethodPut, idPath(projectsPath, id), nil, in, "", nil)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, idPath(projectsPath, id), nil, nil, "", nil)
}
