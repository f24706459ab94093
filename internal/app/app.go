package app

import (
	"context"

	"swipestats/config"
	"swipestats/internal/database"
	"swipestats/internal/jobs"
	"swipestats/internal/logger"
	"swipestats/internal/services"
)

type App struct {
	Database database.DB
	Config   config.Config
	Services services.Service
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.MigrateModels(); err != nil {
		return &App{}, log.Err("failed to migrate models", err)
	}
	if err := db.CreateIndexes(); err != nil {
		return &App{}, log.Err("failed to create indexes", err)
	}

	appServices, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	app := &App{
		Database: db,
		Config:   config,
		Services: appServices,
	}

	if err := jobs.RegisterAllJobs(appServices.Scheduler, config, appServices); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	return app, nil
}

// Start launches the background scheduler.
func (a *App) Start(ctx context.Context) error {
	return a.Services.Scheduler.Start(ctx)
}

// Close stops background work and releases database resources.
func (a *App) Close() error {
	a.Services.Scheduler.Stop()
	return a.Database.Close()
}
