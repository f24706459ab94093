package repositories

import (
	"context"

	"swipestats/internal/logger"
	. "swipestats/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchRepository interface {
	GetExistingByProfile(
		ctx context.Context,
		tx *gorm.DB,
		profileID uuid.UUID,
	) (map[string]*Match, error)
	GetAllByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*Match, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, matches []*Match) error
	CreateMessages(ctx context.Context, tx *gorm.DB, messages []*Message) error
	Reparent(
		ctx context.Context,
		tx *gorm.DB,
		fromProfileID, toProfileID uuid.UUID,
		skipPlatformMatchIDs []string,
	) (int64, error)
	DeleteByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error
}

type matchRepository struct {
	log logger.Logger
}

func NewMatchRepository() MatchRepository {
	return &matchRepository{
		log: logger.New("matchRepository"),
	}
}

// GetExistingByProfile returns the profile's matches keyed by platform match
// id, messages preloaded so callers can union against the dedup keys.
func (r *matchRepository) GetExistingByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) (map[string]*Match, error) {
	log := r.log.Function("GetExistingByProfile")

	var matches []*Match
	err := tx.WithContext(ctx).
		Preload("Messages").
		Where("profile_id = ?", profileID).
		Find(&matches).Error
	if err != nil {
		return nil, log.Err("failed to get existing matches", err, "profileID", profileID)
	}

	result := make(map[string]*Match, len(matches))
	for _, match := range matches {
		result[match.PlatformMatchID] = match
	}

	return result, nil
}

func (r *matchRepository) GetAllByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) ([]*Match, error) {
	log := r.log.Function("GetAllByProfile")

	var matches []*Match
	err := tx.WithContext(ctx).
		Preload("Messages").
		Where("profile_id = ?", profileID).
		Find(&matches).Error
	if err != nil {
		return nil, log.Err("failed to get matches", err, "profileID", profileID)
	}

	return matches, nil
}

func (r *matchRepository) CreateBatch(ctx context.Context, tx *gorm.DB, matches []*Match) error {
	log := r.log.Function("CreateBatch")

	if len(matches) == 0 {
		return nil
	}

	if err := gorm.G[[]*Match](tx).Create(ctx, &matches); err != nil {
		return log.Err("failed to create matches", err, "count", len(matches))
	}

	log.Info("Created matches", "count", len(matches))
	return nil
}

func (r *matchRepository) CreateMessages(
	ctx context.Context,
	tx *gorm.DB,
	messages []*Message,
) error {
	log := r.log.Function("CreateMessages")

	if len(messages) == 0 {
		return nil
	}

	if err := gorm.G[[]*Message](tx).Create(ctx, &messages); err != nil {
		return log.Err("failed to create messages", err, "count", len(messages))
	}

	log.Info("Created messages", "count", len(messages))
	return nil
}

// Reparent moves matches from one profile to another, skipping platform match
// ids the target already has so the per-profile match uniqueness holds.
// Skipped matches stay behind for the caller to delete with the old profile.
func (r *matchRepository) Reparent(
	ctx context.Context,
	tx *gorm.DB,
	fromProfileID, toProfileID uuid.UUID,
	skipPlatformMatchIDs []string,
) (int64, error) {
	log := r.log.Function("Reparent")

	query := gorm.G[*Match](tx).Where("profile_id = ?", fromProfileID)
	if len(skipPlatformMatchIDs) > 0 {
		query = query.Where("platform_match_id NOT IN ?", skipPlatformMatchIDs)
	}

	moved, err := query.Update(ctx, "profile_id", toProfileID)
	if err != nil {
		return 0, log.Err(
			"failed to reparent matches",
			err,
			"fromProfileID", fromProfileID,
			"toProfileID", toProfileID,
		)
	}

	log.Info("Reparented matches",
		"fromProfileID", fromProfileID,
		"toProfileID", toProfileID,
		"moved", moved,
		"skipped", len(skipPlatformMatchIDs))
	return int64(moved), nil
}

func (r *matchRepository) DeleteByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) error {
	log := r.log.Function("DeleteByProfile")

	// Messages first, matches second; no cascade is assumed.
	err := tx.WithContext(ctx).
		Where("match_id IN (?)",
			tx.Model(&Match{}).Select("id").Where("profile_id = ?", profileID),
		).
		Delete(&Message{}).Error
	if err != nil {
		return log.Err("failed to delete messages", err, "profileID", profileID)
	}

	if _, err := gorm.G[*Match](tx).Where("profile_id = ?", profileID).Delete(ctx); err != nil {
		return log.Err("failed to delete matches", err, "profileID", profileID)
	}

	return nil
}
