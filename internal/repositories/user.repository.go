package repositories

import (
	"context"
	"errors"

	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, id uuid.UUID, isAnonymous bool) (*User, error)
	ApplyGeoHint(ctx context.Context, tx *gorm.DB, id uuid.UUID, geo *types.GeoHint) error
}

type userRepository struct {
	log logger.Logger
}

func NewUserRepository() UserRepository {
	return &userRepository{
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	user, err := gorm.G[*User](tx).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get user", err, "id", id)
	}

	return user, nil
}

// GetOrCreate ensures a user row exists for the resolved caller identity.
// Authentication happened upstream; this just mirrors the identity locally.
func (r *userRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	isAnonymous bool,
) (*User, error) {
	log := r.log.Function("GetOrCreate")

	user, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &User{
		BaseUUIDModel: BaseUUIDModel{ID: id},
		IsAnonymous:   isAnonymous,
	}
	if err := gorm.G[User](tx).Create(ctx, user); err != nil {
		return nil, log.Err("failed to create user", err, "id", id)
	}

	log.Info("Created user", "id", id, "isAnonymous", isAnonymous)
	return user, nil
}

// ApplyGeoHint enriches the owning user with an approximate location. The
// hint never touches the platform profile.
func (r *userRepository) ApplyGeoHint(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	geo *types.GeoHint,
) error {
	log := r.log.Function("ApplyGeoHint")

	if geo == nil {
		return nil
	}

	updates := map[string]any{}
	if geo.City != "" {
		updates["city"] = geo.City
	}
	if geo.Country != "" {
		updates["country"] = geo.Country
	}
	if geo.Region != "" {
		updates["region"] = geo.Region
	}
	if len(updates) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return log.Err("failed to apply geo hint", err, "id", id)
	}

	return nil
}
