package jobs

import (
	"swipestats/config"
	"swipestats/internal/logger"
	"swipestats/internal/services"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	cohortGenerationJob := NewCohortGenerationJob(
		services.CohortAggregator,
		Daily,
	)
	if err := schedulerService.AddJob(cohortGenerationJob); err != nil {
		return log.Err("failed to register cohort generation job", err)
	}
	log.Info("Registered cohort generation job", "schedule", "daily")

	return nil
}
