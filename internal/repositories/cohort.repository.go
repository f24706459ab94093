package repositories

import (
	"context"
	"errors"
	"time"

	"swipestats/internal/logger"
	. "swipestats/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CohortRepository interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*CohortDefinition, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*CohortDefinition, error)
	UpdateStats(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		profileCount int,
		computedAt time.Time,
	) error
}

type cohortRepository struct {
	log logger.Logger
}

func NewCohortRepository() CohortRepository {
	return &cohortRepository{
		log: logger.New("cohortRepository"),
	}
}

func (r *cohortRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*CohortDefinition, error) {
	log := r.log.Function("GetAll")

	cohorts, err := gorm.G[*CohortDefinition](tx).
		Order("name ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get cohort definitions", err)
	}

	return cohorts, nil
}

func (r *cohortRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*CohortDefinition, error) {
	log := r.log.Function("GetByID")

	cohort, err := gorm.G[*CohortDefinition](tx).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get cohort definition", err, "id", id)
	}

	return cohort, nil
}

func (r *cohortRepository) UpdateStats(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	profileCount int,
	computedAt time.Time,
) error {
	log := r.log.Function("UpdateStats")

	err := tx.WithContext(ctx).
		Model(&CohortDefinition{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"profile_count":    profileCount,
			"last_computed_at": computedAt,
		}).Error
	if err != nil {
		return log.Err("failed to update cohort stats", err, "id", id)
	}

	return nil
}
