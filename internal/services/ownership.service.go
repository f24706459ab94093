package services

import (
	"context"
	"time"

	"swipestats/config"
	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/repositories"
	"swipestats/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnershipService decides which merge path an upload takes and enforces the
// chronological and identity invariants around cross-account merges.
type OwnershipService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	driftYears  int
	log         logger.Logger
}

func NewOwnershipService(
	cfg config.Config,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) *OwnershipService {
	return &OwnershipService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		driftYears:  cfg.IdentityDriftYears,
		log:         logger.New("ownershipService"),
	}
}

// Resolve maps the (existing owner, caller) pair onto one of the four
// terminal outcomes. The non-forbidden outcomes are the normal return path,
// never errors.
//
//	no existing profile              -> CREATE
//	owner is the caller              -> ADDITIVE_UPDATE
//	owner is anonymous               -> CLAIM_THEN_UPDATE
//	owner is another claimed account -> FORBIDDEN
func (s *OwnershipService) Resolve(
	ctx context.Context,
	tx *gorm.DB,
	existing *Profile,
	callerID uuid.UUID,
	callerIsAnonymous bool,
) (types.OwnershipOutcome, error) {
	log := s.log.Function("Resolve")

	if existing == nil {
		return types.OutcomeCreate, nil
	}

	if existing.UserID == nil {
		// Unowned rows only exist transiently; any caller may claim them the
		// same way as anonymously owned ones.
		return types.OutcomeClaimThenUpdate, nil
	}

	if *existing.UserID == callerID {
		return types.OutcomeAdditiveUpdate, nil
	}

	owner, err := s.userRepo.GetByID(ctx, tx, *existing.UserID)
	if err != nil {
		return types.OutcomeForbidden, err
	}

	if owner != nil && owner.IsAnonymous {
		// An anonymous owner is not a claimed identity; any other caller may
		// take the profile over.
		log.Info("Anonymously owned profile claimable",
			"profileID", existing.ID,
			"callerID", callerID)
		return types.OutcomeClaimThenUpdate, nil
	}

	log.Warn("Upload rejected: profile owned by a different claimed identity",
		"profileID", existing.ID,
		"callerID", callerID)
	return types.OutcomeForbidden, nil
}

// TransferOwnership reassigns a profile from one user to another. Kept as its
// own operation, invoked explicitly by callers, so it can be tested and
// audited independently of upload logic.
func (s *OwnershipService) TransferOwnership(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
	fromUserID *uuid.UUID,
	toUserID uuid.UUID,
) error {
	log := s.log.Function("TransferOwnership")

	profile, err := s.profileRepo.GetByID(ctx, tx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return types.ErrProfileNotFound
	}

	if fromUserID != nil && (profile.UserID == nil || *profile.UserID != *fromUserID) {
		return log.Err("ownership transfer rejected", types.ErrUnauthorized,
			"profileID", profileID,
			"expectedOwner", fromUserID)
	}

	if err := s.profileRepo.UpdateOwner(ctx, tx, profileID, toUserID); err != nil {
		return err
	}

	log.Info("Ownership transferred",
		"profileID", profileID,
		"fromUserID", fromUserID,
		"toUserID", toUserID)
	return nil
}

// CheckChronology enforces older-to-newer cross-account merges: the incoming
// export's last active day must not precede the existing profile's. A
// violation is terminal; the user re-uploads in chronological order.
func (s *OwnershipService) CheckChronology(
	existing *Profile,
	incomingLastActive *time.Time,
) error {
	if existing.LastActiveDay == nil || incomingLastActive == nil {
		return nil
	}

	if incomingLastActive.Before(*existing.LastActiveDay) {
		return &types.ChronologyViolationError{
			ExistingLastActive: *existing.LastActiveDay,
			IncomingLastActive: *incomingLastActive,
		}
	}

	return nil
}

// CheckIdentityDrift flags a cross-account merge whose birth dates differ by
// more than the configured threshold. A warning, not a block: platforms can
// legitimately correct a birth date, so the caller confirms instead.
func (s *OwnershipService) CheckIdentityDrift(
	existing *Profile,
	incomingBirthDate time.Time,
) *types.IdentityMismatchWarning {
	if existing.BirthDate == nil {
		return nil
	}

	drift := existing.BirthDate.Sub(incomingBirthDate)
	if drift < 0 {
		drift = -drift
	}

	threshold := time.Duration(s.driftYears) * 365 * 24 * time.Hour
	if drift > threshold {
		return &types.IdentityMismatchWarning{
			ExistingBirthDate: *existing.BirthDate,
			IncomingBirthDate: incomingBirthDate,
			DriftYears:        s.driftYears,
		}
	}

	return nil
}
