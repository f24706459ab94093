package services

import (
	"context"
	"testing"
	"time"

	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepository serves canned users keyed by id, enough to exercise the
// owner lookup inside outcome resolution.
type stubUserRepository struct {
	users map[uuid.UUID]*User
}

func (r *stubUserRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*User, error) {
	return r.users[id], nil
}

func (r *stubUserRepository) GetOrCreate(_ context.Context, _ *gorm.DB, id uuid.UUID, isAnonymous bool) (*User, error) {
	user := &User{BaseUUIDModel: BaseUUIDModel{ID: id}, IsAnonymous: isAnonymous}
	r.users[id] = user
	return user, nil
}

func (r *stubUserRepository) ApplyGeoHint(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ *types.GeoHint) error {
	return nil
}

func newOwnershipServiceForTest(users map[uuid.UUID]*User) *OwnershipService {
	return &OwnershipService{
		userRepo:   &stubUserRepository{users: users},
		driftYears: 1,
		log:        logger.New("test"),
	}
}

func TestOwnershipService_Resolve(t *testing.T) {
	ctx := context.Background()
	callerID := uuid.New()
	otherID := uuid.New()

	ownedBy := func(userID uuid.UUID) *Profile {
		return &Profile{UserID: &userID}
	}

	t.Run("No existing profile resolves to create", func(t *testing.T) {
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{})

		outcome, err := service.Resolve(ctx, nil, nil, callerID, false)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeCreate, outcome)
	})

	t.Run("Caller already owns the profile", func(t *testing.T) {
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{
			callerID: {BaseUUIDModel: BaseUUIDModel{ID: callerID}},
		})

		outcome, err := service.Resolve(ctx, nil, ownedBy(callerID), callerID, false)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeAdditiveUpdate, outcome)
	})

	t.Run("Anonymous owner claimable by authenticated caller", func(t *testing.T) {
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{
			otherID: {BaseUUIDModel: BaseUUIDModel{ID: otherID}, IsAnonymous: true},
		})

		outcome, err := service.Resolve(ctx, nil, ownedBy(otherID), callerID, false)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeClaimThenUpdate, outcome)
	})

	t.Run("Anonymous caller can also claim an anonymous owner's profile", func(t *testing.T) {
		// Forbidden is reserved for profiles held by a claimed identity; an
		// anonymous owner is not one, whoever the caller is.
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{
			otherID: {BaseUUIDModel: BaseUUIDModel{ID: otherID}, IsAnonymous: true},
		})

		outcome, err := service.Resolve(ctx, nil, ownedBy(otherID), callerID, true)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeClaimThenUpdate, outcome)
		assert.NotEqual(t, types.OutcomeForbidden, outcome)
	})

	t.Run("Claimed owner blocks everyone else", func(t *testing.T) {
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{
			otherID: {BaseUUIDModel: BaseUUIDModel{ID: otherID}, IsAnonymous: false},
		})

		outcome, err := service.Resolve(ctx, nil, ownedBy(otherID), callerID, false)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeForbidden, outcome)
	})

	t.Run("Unowned profile resolves to claim", func(t *testing.T) {
		service := newOwnershipServiceForTest(map[uuid.UUID]*User{})

		outcome, err := service.Resolve(ctx, nil, &Profile{UserID: nil}, callerID, false)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeClaimThenUpdate, outcome)
	})
}

func TestOwnershipService_CheckChronology(t *testing.T) {
	service := newOwnershipServiceForTest(nil)

	day := func(value string) *time.Time {
		parsed, err := time.Parse("2006-01-02", value)
		require.NoError(t, err)
		return &parsed
	}

	t.Run("Incoming newer than existing passes", func(t *testing.T) {
		existing := &Profile{LastActiveDay: day("2024-01-10")}
		assert.NoError(t, service.CheckChronology(existing, day("2024-06-01")))
	})

	t.Run("Incoming equal to existing passes", func(t *testing.T) {
		existing := &Profile{LastActiveDay: day("2024-01-10")}
		assert.NoError(t, service.CheckChronology(existing, day("2024-01-10")))
	})

	t.Run("Incoming older than existing is rejected", func(t *testing.T) {
		existing := &Profile{LastActiveDay: day("2024-06-01")}
		err := service.CheckChronology(existing, day("2024-01-10"))

		var chronologyErr *types.ChronologyViolationError
		require.ErrorAs(t, err, &chronologyErr)
		assert.Equal(t, *day("2024-06-01"), chronologyErr.ExistingLastActive)
	})

	t.Run("Missing bounds on either side pass", func(t *testing.T) {
		assert.NoError(t, service.CheckChronology(&Profile{}, day("2024-01-10")))
		assert.NoError(t, service.CheckChronology(&Profile{LastActiveDay: day("2024-01-10")}, nil))
	})
}

func TestOwnershipService_CheckIdentityDrift(t *testing.T) {
	service := newOwnershipServiceForTest(nil)
	birthDate := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Small drift is tolerated", func(t *testing.T) {
		existing := &Profile{BirthDate: &birthDate}
		warning := service.CheckIdentityDrift(existing, birthDate.AddDate(0, 6, 0))
		assert.Nil(t, warning)
	})

	t.Run("Drift beyond the threshold warns", func(t *testing.T) {
		existing := &Profile{BirthDate: &birthDate}
		warning := service.CheckIdentityDrift(existing, birthDate.AddDate(3, 0, 0))
		require.NotNil(t, warning)
		assert.Equal(t, 1, warning.DriftYears)
	})

	t.Run("Drift is symmetric", func(t *testing.T) {
		existing := &Profile{BirthDate: &birthDate}
		warning := service.CheckIdentityDrift(existing, birthDate.AddDate(-3, 0, 0))
		assert.NotNil(t, warning)
	})

	t.Run("Existing profile without birth date never warns", func(t *testing.T) {
		warning := service.CheckIdentityDrift(&Profile{}, birthDate)
		assert.Nil(t, warning)
	})
}
