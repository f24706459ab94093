package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"swipestats/config"
	"swipestats/internal/database"
	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/repositories"
	"swipestats/internal/types"
	"swipestats/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CohortAggregatorService synthesizes "average member" profiles from
// populations of real profiles. Offline batch work; never on the request
// path.
type CohortAggregatorService struct {
	db            database.DB
	repos         repositories.Repository
	transaction   *TransactionService
	minProfiles   int
	minDateSample int
	fetchBatch    int
	log           logger.Logger
}

func NewCohortAggregatorService(
	cfg config.Config,
	db database.DB,
	repos repositories.Repository,
	transaction *TransactionService,
) *CohortAggregatorService {
	return &CohortAggregatorService{
		db:            db,
		repos:         repos,
		transaction:   transaction,
		minProfiles:   cfg.CohortMinProfiles,
		minDateSample: cfg.CohortMinDateSample,
		fetchBatch:    cfg.CohortFetchBatch,
		log:           logger.New("cohortAggregatorService"),
	}
}

// GenerateAll regenerates every cohort definition. Cohorts are independent:
// one cohort's failure is caught, logged, and counted, never aborting the
// rest of the batch.
func (s *CohortAggregatorService) GenerateAll(ctx context.Context) types.BatchSummary {
	log := s.log.Function("GenerateAll")

	summary := types.BatchSummary{}

	cohorts, err := s.repos.Cohort.GetAll(ctx, s.db.SQLWithContext(ctx))
	if err != nil {
		summary.Failed = 1
		summary.Errors = append(summary.Errors, err.Error())
		return summary
	}

	for _, cohort := range cohorts {
		result, err := s.GenerateCohortProfile(ctx, cohort.ID)

		var sampleErr *types.InsufficientSampleError
		switch {
		case errors.As(err, &sampleErr):
			summary.Skipped++
			log.Info("Skipped cohort below sample threshold",
				"cohort", cohort.Name,
				"profiles", sampleErr.ProfileCount)
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", cohort.Name, err))
			log.Er("Cohort generation failed", err, "cohort", cohort.Name)
		default:
			summary.Generated++
			log.Info("Generated cohort profile",
				"cohort", cohort.Name,
				"usageDays", result.UsageDaysWritten)
		}
	}

	log.Info("Cohort generation batch finished",
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary
}

// GenerateCohortProfile fully regenerates one cohort's synthetic profile:
// prior synthetic rows are deleted and fresh ones inserted, never patched,
// because the population and its statistics can change between runs.
func (s *CohortAggregatorService) GenerateCohortProfile(
	ctx context.Context,
	cohortID uuid.UUID,
) (types.CohortGenerationResult, error) {
	log := s.log.Function("GenerateCohortProfile")

	def, err := s.repos.Cohort.GetByID(ctx, s.db.SQLWithContext(ctx), cohortID)
	if err != nil {
		return types.CohortGenerationResult{}, err
	}
	if def == nil {
		return types.CohortGenerationResult{}, &types.BadRequestError{
			Reason: "unknown cohort definition",
		}
	}

	now := time.Now().UTC()

	// Ages are filtered at day granularity so a cohort's population is stable
	// for the whole calendar day, not dependent on the run's time of day.
	population, err := s.repos.Profile.GetCohortPopulation(
		ctx,
		s.db.SQLWithContext(ctx),
		def,
		utils.TruncateToDay(now),
	)
	if err != nil {
		return types.CohortGenerationResult{}, err
	}

	// Population guard: a synthetic average of one or two people is not an
	// aggregate, it is identifying.
	if len(population) < s.minProfiles {
		err := &types.InsufficientSampleError{
			CohortName:   def.Name,
			ProfileCount: len(population),
			Required:     s.minProfiles,
		}
		return types.CohortGenerationResult{Success: false, Reason: err.Error()}, err
	}

	profileIDs := make([]uuid.UUID, len(population))
	for i, profile := range population {
		profileIDs[i] = profile.ID
	}

	rows, err := s.repos.DailyUsage.GetByProfileIDs(
		ctx,
		s.db.SQLWithContext(ctx),
		profileIDs,
		s.fetchBatch,
	)
	if err != nil {
		return types.CohortGenerationResult{}, err
	}

	syntheticRows := aggregateUsageByDate(rows, s.minDateSample)

	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		syntheticProfile, err := s.recreateSyntheticProfile(ctx, tx, def)
		if err != nil {
			return err
		}

		for _, row := range syntheticRows {
			row.ProfileID = syntheticProfile.ID
		}
		if err := s.repos.DailyUsage.CreateBatch(ctx, tx, syntheticRows); err != nil {
			return err
		}

		meta := ComputeProfileMeta(syntheticProfile.ID, syntheticRows, nil)
		if err := s.repos.ProfileMeta.Replace(ctx, tx, meta); err != nil {
			return err
		}

		return s.repos.Cohort.UpdateStats(ctx, tx, def.ID, len(population), now)
	})
	if err != nil {
		return types.CohortGenerationResult{}, err
	}

	log.Info("Regenerated synthetic profile",
		"cohort", def.Name,
		"population", len(population),
		"usageDays", len(syntheticRows))
	return types.CohortGenerationResult{
		Success:          true,
		UsageDaysWritten: len(syntheticRows),
	}, nil
}

// recreateSyntheticProfile deletes the cohort's prior synthetic profile and
// inserts a fresh one. The external id derives from the cohort id, so
// regeneration always lands on the same identity.
func (s *CohortAggregatorService) recreateSyntheticProfile(
	ctx context.Context,
	tx *gorm.DB,
	def *CohortDefinition,
) (*Profile, error) {
	externalID := def.SyntheticExternalID()

	prior, err := s.repos.Profile.GetByPlatformExternalID(ctx, tx, def.Platform, externalID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		if err := s.repos.DailyUsage.DeleteByProfile(ctx, tx, prior.ID); err != nil {
			return nil, err
		}
		if err := s.repos.ProfileMeta.DeleteByProfile(ctx, tx, prior.ID); err != nil {
			return nil, err
		}
		if err := s.repos.Profile.Delete(ctx, tx, prior.ID); err != nil {
			return nil, err
		}
	}

	syntheticProfile := &Profile{
		Platform:   def.Platform,
		ExternalID: externalID,
		Computed:   true,
	}
	if def.Gender != nil {
		syntheticProfile.Gender = *def.Gender
	}
	if def.Country != nil {
		syntheticProfile.Country = *def.Country
	}
	if def.Region != nil {
		syntheticProfile.Region = *def.Region
	}

	if err := s.repos.Profile.Create(ctx, tx, syntheticProfile); err != nil {
		return nil, err
	}
	return syntheticProfile, nil
}

// aggregateUsageByDate reduces a population's usage rows into one synthetic
// row per qualifying date. A date qualifies only when at least minSample
// distinct profiles have a row for it; sparse dates are dropped entirely.
// Count-like metrics take the mean across members (preserving realistic
// totals); rate-like metrics take the median (resisting outlier skew).
func aggregateUsageByDate(rows []*DailyUsageRecord, minSample int) []*DailyUsageRecord {
	byDate := map[string][]*DailyUsageRecord{}
	for _, row := range rows {
		day := utils.FormatDay(row.Date)
		byDate[day] = append(byDate[day], row)
	}

	days := make([]string, 0, len(byDate))
	for day := range byDate {
		days = append(days, day)
	}
	sort.Strings(days)

	var synthetic []*DailyUsageRecord
	for _, day := range days {
		members := byDate[day]

		// Usage rows are unique per (profile, date), so the group size is
		// the distinct-profile count.
		if len(members) < minSample {
			continue
		}

		date, err := utils.ParseDay(day)
		if err != nil {
			continue
		}

		row := &DailyUsageRecord{
			Date:             date,
			AppOpens:         meanInt(members, func(r *DailyUsageRecord) int { return r.AppOpens }),
			SwipeLikes:       meanInt(members, func(r *DailyUsageRecord) int { return r.SwipeLikes }),
			SwipePasses:      meanInt(members, func(r *DailyUsageRecord) int { return r.SwipePasses }),
			SuperLikes:       meanInt(members, func(r *DailyUsageRecord) int { return r.SuperLikes }),
			Matches:          meanInt(members, func(r *DailyUsageRecord) int { return r.Matches }),
			MessagesSent:     meanInt(members, func(r *DailyUsageRecord) int { return r.MessagesSent }),
			MessagesReceived: meanInt(members, func(r *DailyUsageRecord) int { return r.MessagesReceived }),

			LikeRate:       medianRate(members, func(r *DailyUsageRecord) *float64 { return r.LikeRate }),
			MatchRate:      medianRate(members, func(r *DailyUsageRecord) *float64 { return r.MatchRate }),
			ResponseRate:   medianRate(members, func(r *DailyUsageRecord) *float64 { return r.ResponseRate }),
			EngagementRate: medianRate(members, func(r *DailyUsageRecord) *float64 { return r.EngagementRate }),
		}
		synthetic = append(synthetic, row)
	}

	return synthetic
}

func meanInt(members []*DailyUsageRecord, value func(*DailyUsageRecord) int) int {
	if len(members) == 0 {
		return 0
	}

	sum := int64(0)
	for _, member := range members {
		sum += int64(value(member))
	}

	return int(decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(members)))).
		Round(0).
		IntPart())
}

// medianRate takes the median over members that have the rate at all; a rate
// nil for every member stays nil on the synthetic row.
func medianRate(members []*DailyUsageRecord, value func(*DailyUsageRecord) *float64) *float64 {
	values := make([]float64, 0, len(members))
	for _, member := range members {
		if rate := value(member); rate != nil {
			values = append(values, *rate)
		}
	}
	if len(values) == 0 {
		return nil
	}

	sort.Float64s(values)

	var median float64
	mid := len(values) / 2
	if len(values)%2 == 1 {
		median = values[mid]
	} else {
		median = utils.RoundRate((values[mid-1] + values[mid]) / 2)
	}
	return &median
}
