package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jesses-code-adventures/biz/internal/auth"
	"github.com/jesses-code-adventures/biz/internal/database"
	"github.com/jesses-code-adventures/biz/internal/models"
)

type AuthStatus struct {
	LoggedIn  bool
	Source    string
	ExpiresAt *time.Time
}

func (s *DashboardService) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := auth.New(token).WithClock(s.now).Check(); err != nil {
		return err
	}
	if _, err := s.db.PutSetting(ctx, database.SettingAPIToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *DashboardService) Logout(ctx context.Context) error {
	return s.db.DeleteSetting(ctx, database.SettingAPIToken)
}

func (s *DashboardService) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	status := &AuthStatus{}

	token := s.cfg.APIToken
	status.Source = "API_TOKEN"
	if token == "" {
		setting, err := s.db.GetSetting(ctx, database.SettingAPIToken)
		if err != nil {
			return nil, fmt.Errorf("failed to read saved token: %w", err)
		}
		if setting == nil {
			return status, nil
		}
		token = setting.Value
		status.Source = "saved login"
	}

	authCtx := auth.New(token).WithClock(s.now)
	status.LoggedIn = authCtx.Check() == nil
	if exp, ok := authCtx.ExpiresAt(); ok {
		status.ExpiresAt = &exp
	}
	return status, nil
}

func (s *DashboardService) WhoAmI(ctx context.Context) (*models.Profile, error) {
	profile, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *DashboardService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
