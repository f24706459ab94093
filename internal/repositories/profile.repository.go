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

type ProfileRepository interface {
	GetByPlatformExternalID(
		ctx context.Context,
		tx *gorm.DB,
		platform Platform,
		externalID string,
	) (*Profile, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Profile, error)
	Create(ctx context.Context, tx *gorm.DB, profile *Profile) error
	Save(ctx context.Context, tx *gorm.DB, profile *Profile) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	UpdateOwner(ctx context.Context, tx *gorm.DB, profileID, userID uuid.UUID) error
	GetCohortPopulation(
		ctx context.Context,
		tx *gorm.DB,
		def *CohortDefinition,
		now time.Time,
	) ([]*Profile, error)
}

type profileRepository struct {
	log logger.Logger
}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{
		log: logger.New("profileRepository"),
	}
}

func (r *profileRepository) GetByPlatformExternalID(
	ctx context.Context,
	tx *gorm.DB,
	platform Platform,
	externalID string,
) (*Profile, error) {
	log := r.log.Function("GetByPlatformExternalID")

	profile, err := gorm.G[*Profile](tx).
		Where("platform = ? AND external_id = ?", platform, externalID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err(
			"failed to get profile by external id",
			err,
			"platform", platform,
			"externalID", externalID,
		)
	}

	return profile, nil
}

func (r *profileRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Profile, error) {
	log := r.log.Function("GetByID")

	profile, err := gorm.G[*Profile](tx).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get profile", err, "id", id)
	}

	return profile, nil
}

func (r *profileRepository) Create(ctx context.Context, tx *gorm.DB, profile *Profile) error {
	log := r.log.Function("Create")

	if err := gorm.G[Profile](tx).Create(ctx, profile); err != nil {
		return log.Err(
			"failed to create profile",
			err,
			"platform", profile.Platform,
			"externalID", profile.ExternalID,
		)
	}

	return nil
}

func (r *profileRepository) Save(ctx context.Context, tx *gorm.DB, profile *Profile) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Save(profile).Error; err != nil {
		return log.Err("failed to save profile", err, "id", profile.ID)
	}

	return nil
}

func (r *profileRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	if _, err := gorm.G[*Profile](tx).Where("id = ?", id).Delete(ctx); err != nil {
		return log.Err("failed to delete profile", err, "id", id)
	}

	return nil
}

func (r *profileRepository) UpdateOwner(
	ctx context.Context,
	tx *gorm.DB,
	profileID, userID uuid.UUID,
) error {
	log := r.log.Function("UpdateOwner")

	_, err := gorm.G[*Profile](tx).
		Where("id = ?", profileID).
		Update(ctx, "user_id", userID)
	if err != nil {
		return log.Err(
			"failed to update profile owner",
			err,
			"profileID", profileID,
			"userID", userID,
		)
	}

	log.Info("Transferred profile ownership", "profileID", profileID, "userID", userID)
	return nil
}

// GetCohortPopulation returns the real profiles matching a cohort's filters.
// Computed profiles are always excluded so synthetic profiles can never feed
// other synthetic profiles.
func (r *profileRepository) GetCohortPopulation(
	ctx context.Context,
	tx *gorm.DB,
	def *CohortDefinition,
	now time.Time,
) ([]*Profile, error) {
	log := r.log.Function("GetCohortPopulation")

	query := gorm.G[*Profile](tx).
		Where("computed = ? AND platform = ?", false, def.Platform)

	if def.Gender != nil {
		query = query.Where("gender = ?", *def.Gender)
	}
	if def.AgeMin != nil {
		// age >= AgeMin means born on or before now minus AgeMin years
		query = query.Where("birth_date <= ?", now.AddDate(-*def.AgeMin, 0, 0))
	}
	if def.AgeMax != nil {
		// age <= AgeMax means born after now minus AgeMax+1 years
		query = query.Where("birth_date > ?", now.AddDate(-(*def.AgeMax+1), 0, 0))
	}
	if def.Country != nil {
		query = query.Where("country = ?", *def.Country)
	}
	if def.Region != nil {
		query = query.Where("region = ?", *def.Region)
	}

	profiles, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get cohort population", err, "cohort", def.Name)
	}

	log.Info("Retrieved cohort population", "cohort", def.Name, "count", len(profiles))
	return profiles, nil
}
