package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/auth"
	"github.com/jesses-code-adventures/biz/internal/config"
	"github.com/jesses-code-adventures/biz/internal/database"
	"github.com/jesses-code-adventures/biz/internal/logging"
	"github.com/jesses-code-adventures/biz/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	apiURL, dbConn, err := globalFlags(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(apiURL, dbConn)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(cfg.Env, cfg.LogLevel, os.Stderr)

	db, err := database.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	token, err := service.ResolveToken(ctx, cfg, db)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIBaseURL, auth.New(token), log)
	dashboardService := service.NewDashboardService(client, db, cfg, log)

	rootCmd := newRootCmd(dashboardService)
	return rootCmd.ExecuteContext(ctx)
}
