package repositories

import (
	"context"

	"swipestats/internal/logger"
	. "swipestats/internal/models"

	"gorm.io/gorm"
)

type IngestionRunRepository interface {
	Create(ctx context.Context, tx *gorm.DB, run *IngestionRun) error
	Save(ctx context.Context, tx *gorm.DB, run *IngestionRun) error
}

type ingestionRunRepository struct {
	log logger.Logger
}

func NewIngestionRunRepository() IngestionRunRepository {
	return &ingestionRunRepository{
		log: logger.New("ingestionRunRepository"),
	}
}

func (r *ingestionRunRepository) Create(ctx context.Context, tx *gorm.DB, run *IngestionRun) error {
	log := r.log.Function("Create")

	if err := gorm.G[IngestionRun](tx).Create(ctx, run); err != nil {
		return log.Err("failed to create ingestion run", err, "platform", run.Platform)
	}

	return nil
}

func (r *ingestionRunRepository) Save(ctx context.Context, tx *gorm.DB, run *IngestionRun) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Save(run).Error; err != nil {
		return log.Err("failed to save ingestion run", err, "id", run.ID)
	}

	return nil
}
