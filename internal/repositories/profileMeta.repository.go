package repositories

import (
	"context"
	"time"

	"swipestats/internal/database"
	"swipestats/internal/logger"
	. "swipestats/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PROFILE_META_CACHE_PREFIX = "profile_meta"
	PROFILE_META_CACHE_EXPIRY = 12 * time.Hour
)

type ProfileMetaRepository interface {
	GetByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) (*ProfileMeta, error)
	Replace(ctx context.Context, tx *gorm.DB, meta *ProfileMeta) error
	DeleteByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) error
}

type profileMetaRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewProfileMetaRepository(cache database.CacheClient) ProfileMetaRepository {
	return &profileMetaRepository{
		cache: cache,
		log:   logger.New("profileMetaRepository"),
	}
}

func (r *profileMetaRepository) GetByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) (*ProfileMeta, error) {
	log := r.log.Function("GetByProfile")

	var cached ProfileMeta
	found, err := database.NewCacheBuilder(r.cache, profileID.String()).
		WithContext(ctx).
		WithHash(PROFILE_META_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get profile meta from cache", "profileID", profileID, "error", err)
	}
	if found {
		return &cached, nil
	}

	meta, err := gorm.G[*ProfileMeta](tx).
		Where("profile_id = ?", profileID).
		First(ctx)
	if err != nil {
		return nil, log.Err("failed to get profile meta", err, "profileID", profileID)
	}

	err = database.NewCacheBuilder(r.cache, profileID.String()).
		WithContext(ctx).
		WithHash(PROFILE_META_CACHE_PREFIX).
		WithStruct(meta).
		WithTTL(PROFILE_META_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to cache profile meta", "profileID", profileID, "error", err)
	}

	return meta, nil
}

// Replace is the only write path for profile meta: the previous rollup is
// deleted and the freshly computed one inserted, so meta can never be a
// partial patch over stale sources.
func (r *profileMetaRepository) Replace(
	ctx context.Context,
	tx *gorm.DB,
	meta *ProfileMeta,
) error {
	log := r.log.Function("Replace")

	if _, err := gorm.G[*ProfileMeta](tx).Where("profile_id = ?", meta.ProfileID).Delete(ctx); err != nil {
		return log.Err("failed to delete prior profile meta", err, "profileID", meta.ProfileID)
	}

	if err := gorm.G[ProfileMeta](tx).Create(ctx, meta); err != nil {
		return log.Err("failed to create profile meta", err, "profileID", meta.ProfileID)
	}

	r.clearCache(ctx, meta.ProfileID)

	log.Info("Replaced profile meta", "profileID", meta.ProfileID)
	return nil
}

func (r *profileMetaRepository) DeleteByProfile(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) error {
	log := r.log.Function("DeleteByProfile")

	if _, err := gorm.G[*ProfileMeta](tx).Where("profile_id = ?", profileID).Delete(ctx); err != nil {
		return log.Err("failed to delete profile meta", err, "profileID", profileID)
	}

	r.clearCache(ctx, profileID)
	return nil
}

func (r *profileMetaRepository) clearCache(ctx context.Context, profileID uuid.UUID) {
	err := database.NewCacheBuilder(r.cache, profileID.String()).
		WithContext(ctx).
		WithHash(PROFILE_META_CACHE_PREFIX).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear profile meta cache", "profileID", profileID, "error", err)
	}
}
