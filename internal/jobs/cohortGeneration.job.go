package jobs

import (
	"context"

	"swipestats/internal/logger"
	"swipestats/internal/services"
)

type CohortGenerationJob struct {
	cohortAggregator *services.CohortAggregatorService
	log              logger.Logger
	schedule         services.Schedule
}

func NewCohortGenerationJob(
	cohortAggregator *services.CohortAggregatorService,
	schedule services.Schedule,
) *CohortGenerationJob {
	log := logger.New("cohortGenerationJob")
	log.Info("Creating new cohort generation job", "schedule", schedule)

	return &CohortGenerationJob{
		cohortAggregator: cohortAggregator,
		log:              log,
		schedule:         schedule,
	}
}

func (j *CohortGenerationJob) Name() string {
	return "CohortProfileGeneration"
}

func (j *CohortGenerationJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting cohort profile generation")

	summary := j.cohortAggregator.GenerateAll(ctx)

	log.Info("Cohort profile generation completed",
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return nil
}

func (j *CohortGenerationJob) Schedule() services.Schedule {
	return j.schedule
}
