package repositories

import (
	"context"
	"time"

	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DailyUsageRepository interface {
	GetExistingByProfile(
		ctx context.Context,
		tx *gorm.DB,
		profileID uuid.UUID,
	) (map[string]*DailyUsageRecord, error)
	GetAllByProfile(
		ctx context.Context,
		tx *gorm.DB,
		profileID uuid.UUID,
	) ([]*DailyUsageRecord, error)
	GetByProfileIDs(
		ctx context.Context,
		tx *gorm.DB,
		profileIDs []uuid.UUID,
		batchSize int,
	) ([]*DailyUsageRecord, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, records []*DailyUsageRecord) error
	UpdateBatch(ctx context.Context, tx *gorm.DB, records []*DailyUsageRecord) error
	Reparent(
		ctx context.Context,
		tx *gorm.DB,
		fromProfileID, toProfileID uuid.UUID,
		skipDates []time.Time,
	) (int64, error)
	DeleteByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error
}

type dailyUsageRepository struct {
	log logger.Logger
}

func NewDailyUsageRepository() DailyUsageRepository {
	return &dailyUsageRepository{
		log: logger.New("dailyUsageRepository"),
	}
}

func (r *dailyUsageRepository) GetExistingByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) (map[string]*DailyUsageRecord, error) {
	log := r.log.Function("GetExistingByProfile")

	records, err := gorm.G[*DailyUsageRecord](tx).
		Where("profile_id = ?", profileID).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get existing usage records", err, "profileID", profileID)
	}

	result := make(map[string]*DailyUsageRecord, len(records))
	for _, record := range records {
		result[utils.FormatDay(record.Date)] = record
	}

	return result, nil
}

func (r *dailyUsageRepository) GetAllByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) ([]*DailyUsageRecord, error) {
	log := r.log.Function("GetAllByProfile")

	records, err := gorm.G[*DailyUsageRecord](tx).
		Where("profile_id = ?", profileID).
		Order("date ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get usage records", err, "profileID", profileID)
	}

	return records, nil
}

// GetByProfileIDs fetches usage rows for a population in fixed-size id
// chunks to stay under query parameter limits. Chunking is purely an
// implementation detail; results are concatenated.
func (r *dailyUsageRepository) GetByProfileIDs(
	ctx context.Context,
	tx *gorm.DB,
	profileIDs []uuid.UUID,
	batchSize int,
) ([]*DailyUsageRecord, error) {
	log := r.log.Function("GetByProfileIDs")

	if batchSize <= 0 {
		batchSize = 500
	}

	var all []*DailyUsageRecord
	for start := 0; start < len(profileIDs); start += batchSize {
		end := min(start+batchSize, len(profileIDs))

		records, err := gorm.G[*DailyUsageRecord](tx).
			Where("profile_id IN ?", profileIDs[start:end]).
			Find(ctx)
		if err != nil {
			return nil, log.Err(
				"failed to get usage records batch",
				err,
				"batchStart", start,
				"batchEnd", end,
			)
		}

		all = append(all, records...)
	}

	log.Info("Retrieved usage records for population",
		"profiles", len(profileIDs),
		"records", len(all))
	return all, nil
}

func (r *dailyUsageRepository) CreateBatch(
	ctx context.Context,
	tx *gorm.DB,
	records []*DailyUsageRecord,
) error {
	log := r.log.Function("CreateBatch")

	if len(records) == 0 {
		return nil
	}

	if err := gorm.G[[]*DailyUsageRecord](tx).Create(ctx, &records); err != nil {
		return log.Err("failed to create usage records", err, "count", len(records))
	}

	log.Info("Created usage records", "count", len(records))
	return nil
}

func (r *dailyUsageRepository) UpdateBatch(
	ctx context.Context,
	tx *gorm.DB,
	records []*DailyUsageRecord,
) error {
	log := r.log.Function("UpdateBatch")

	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := tx.WithContext(ctx).Save(record).Error; err != nil {
			return log.Err(
				"failed to update usage record",
				err,
				"profileID", record.ProfileID,
				"date", utils.FormatDay(record.Date),
			)
		}
	}

	log.Info("Updated usage records", "count", len(records))
	return nil
}

// Reparent moves usage rows from one profile to another, skipping dates the
// target already covers so the per-date uniqueness constraint holds.
func (r *dailyUsageRepository) Reparent(
	ctx context.Context,
	tx *gorm.DB,
	fromProfileID, toProfileID uuid.UUID,
	skipDates []time.Time,
) (int64, error) {
	log := r.log.Function("Reparent")

	query := gorm.G[*DailyUsageRecord](tx).Where("profile_id = ?", fromProfileID)
	if len(skipDates) > 0 {
		query = query.Where("date NOT IN ?", skipDates)
	}

	moved, err := query.Update(ctx, "profile_id", toProfileID)
	if err != nil {
		return 0, log.Err(
			"failed to reparent usage records",
			err,
			"fromProfileID", fromProfileID,
			"toProfileID", toProfileID,
		)
	}

	log.Info("Reparented usage records",
		"fromProfileID", fromProfileID,
		"toProfileID", toProfileID,
		"moved", moved,
		"skipped", len(skipDates))
	return int64(moved), nil
}

func (r *dailyUsageRepository) DeleteByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) error {
	log := r.log.Function("DeleteByProfile")

	if _, err := gorm.G[*DailyUsageRecord](tx).Where("profile_id = ?", profileID).Delete(ctx); err != nil {
		return log.Err("failed to delete usage records", err, "profileID", profileID)
	}

	return nil
}
