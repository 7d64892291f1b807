package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/progress"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

// ProjectProgress is the rounded mean percentage of the project's tasks, or 0
// when it has none.
func ProjectProgress(projectID string, tasks []models.Task) int {
	sum, n := 0, 0
	for i := range tasks {
		if utils.FromPtr(tasks[i].ProjectID) != projectID {
			continue
		}
		sum += progress.Percentage(&tasks[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// ListProjects returns every project with its derived progress filled in.
func (s *DashboardService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	for i := range projects {
		projects[i].ProgressPercentage = ProjectProgress(projects[i].ID, tasks)
	}
	return projects, nil
}

func (s *DashboardService) GetProject(ctx context.Context, id string) (*models.Project, []models.Task, error) {
	project, err := s.api.GetProject(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	tasks, err := s.ListTasks(ctx, TaskFilter{ProjectID: id})
	if err != nil {
		return nil, nil, err
	}
	project.ProgressPercentage = ProjectProgress(id, tasks)
	return project, tasks, nil
}

func (s *DashboardService) CreateProject(ctx context.Context, in *api.ProjectInput) (*models.Project, error) {
	if err := validateProject(in); err != nil {
		return nil, err
	}
	project, err := s.api.CreateProject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *DashboardService) UpdateProject(ctx context.Context, id string, edit func(*api.ProjectInput)) (*models.Project, error) {
	project, err := s.api.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	in := &api.ProjectInput{
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
	}
	edit(in)
	if err := validateProject(in); err != nil {
		return nil, err
	}
	if err := s.api.UpdateProject(ctx, id, in); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.api.GetProject(ctx, id)
}

func (s *DashboardService) DeleteProject(ctx context.Context, id string) error {
	if err := s.api.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func validateProject(in *api.ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if in.StartDate.Valid() && in.EndDate.Valid() && in.EndDate.Before(in.StartDate.Time) {
		return fmt.Errorf("project end date %s is before its start date %s", in.EndDate, in.StartDate)
	}
	return nil
}
