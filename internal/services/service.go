package services

import (
	"swipestats/config"
	"swipestats/internal/database"
	"swipestats/internal/repositories"
)

type Service struct {
	Transaction      *TransactionService
	Blob             *BlobService
	ExportNormalizer *ExportNormalizerService
	MetricExtractor  *MetricExtractorService
	Ownership        *OwnershipService
	ProfileIngestion *ProfileIngestionService
	CohortAggregator *CohortAggregatorService
	Scheduler        *SchedulerService
}

func New(db database.DB, config config.Config) (Service, error) {
	repos := repositories.New(db)

	transactionService := NewTransactionService(db)
	blobService := NewBlobService(config)
	exportNormalizerService := NewExportNormalizerService()
	metricExtractorService := NewMetricExtractorService()
	ownershipService := NewOwnershipService(config, repos.User, repos.Profile)
	profileIngestionService := NewProfileIngestionService(
		db,
		repos,
		blobService,
		exportNormalizerService,
		metricExtractorService,
		ownershipService,
		transactionService,
	)
	cohortAggregatorService := NewCohortAggregatorService(config, db, repos, transactionService)
	schedulerService := NewSchedulerService()

	return Service{
		Transaction:      transactionService,
		Blob:             blobService,
		ExportNormalizer: exportNormalizerService,
		MetricExtractor:  metricExtractorService,
		Ownership:        ownershipService,
		ProfileIngestion: profileIngestionService,
		CohortAggregator: cohortAggregatorService,
		Scheduler:        schedulerService,
	}, nil
}
