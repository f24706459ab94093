package services

import (
	"context"
	"encoding/json"
	"time"

	"swipestats/internal/database"
	"swipestats/internal/logger"
	. "swipestats/internal/models"
	"swipestats/internal/repositories"
	"swipestats/internal/types"
	"swipestats/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileIngestionService is the exposed surface of the ingestion core:
// create, additive update, and cross-account merge. Each operation runs the
// normalize -> extract -> resolve -> merge pipeline for one upload.
type ProfileIngestionService struct {
	db          database.DB
	repos       repositories.Repository
	blob        *BlobService
	normalizer  *ExportNormalizerService
	extractor   *MetricExtractorService
	ownership   *OwnershipService
	transaction *TransactionService
	log         logger.Logger
}

func NewProfileIngestionService(
	db database.DB,
	repos repositories.Repository,
	blob *BlobService,
	normalizer *ExportNormalizerService,
	extractor *MetricExtractorService,
	ownership *OwnershipService,
	transaction *TransactionService,
) *ProfileIngestionService {
	return &ProfileIngestionService{
		db:          db,
		repos:       repos,
		blob:        blob,
		normalizer:  normalizer,
		extractor:   extractor,
		ownership:   ownership,
		transaction: transaction,
		log:         logger.New("profileIngestionService"),
	}
}

// CreateProfile ingests an export for a brand-new profile; the caller becomes
// its owner. Fails with a ConflictError when the external id already exists.
func (s *ProfileIngestionService) CreateProfile(
	ctx context.Context,
	req types.IngestRequest,
) (*Profile, error) {
	log := s.log.Function("CreateProfile")

	metrics, extras, err := s.fetchAndExtract(ctx, req.Platform, req.ExportURL)
	if err != nil {
		return nil, err
	}

	run := s.startRun(ctx, req.Platform)

	var profile *Profile
	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := s.repos.Profile.GetByPlatformExternalID(ctx, tx, req.Platform, req.ExternalID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &types.ConflictError{
				ExternalID: req.ExternalID,
				Reason:     "a profile for this export already exists; use an update instead",
			}
		}

		if _, err := s.repos.User.GetOrCreate(ctx, tx, req.CallerID, req.CallerIsAnonymous); err != nil {
			return err
		}
		if err := s.repos.User.ApplyGeoHint(ctx, tx, req.CallerID, req.Geo); err != nil {
			return err
		}

		profile = buildProfile(req.Platform, req.ExternalID, req.CallerID, metrics, extras)
		if err := s.repos.Profile.Create(ctx, tx, profile); err != nil {
			return err
		}

		counts, err := s.applyFresh(ctx, tx, profile, metrics)
		if err != nil {
			return err
		}
		run.MarkAsCompleted(counts.usageDays, counts.matches, counts.messages)

		// Meta recompute is always the last write so a rollup can never be
		// generated from a half-written state.
		return s.recomputeMeta(ctx, tx, profile.ID)
	})

	s.finishRun(ctx, run, profile, err)
	if err != nil {
		return nil, err
	}

	log.Info("Created profile",
		"platform", req.Platform,
		"externalID", req.ExternalID,
		"usageDays", run.UsageDaysWritten)
	return profile, nil
}

// UpdateProfile re-ingests an export for an existing profile. Same-owner
// re-uploads merge additively; an authenticated caller claims anonymously
// owned profiles first; profiles claimed by a different identity are
// forbidden.
func (s *ProfileIngestionService) UpdateProfile(
	ctx context.Context,
	req types.IngestRequest,
) (*Profile, error) {
	log := s.log.Function("UpdateProfile")

	metrics, extras, err := s.fetchAndExtract(ctx, req.Platform, req.ExportURL)
	if err != nil {
		return nil, err
	}

	run := s.startRun(ctx, req.Platform)

	var profile *Profile
	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := s.repos.Profile.GetByPlatformExternalID(ctx, tx, req.Platform, req.ExternalID)
		if err != nil {
			return err
		}
		if existing == nil {
			return types.ErrProfileNotFound
		}

		outcome, err := s.ownership.Resolve(ctx, tx, existing, req.CallerID, req.CallerIsAnonymous)
		if err != nil {
			return err
		}

		switch outcome {
		case types.OutcomeForbidden:
			return &types.ConflictError{
				ExternalID: req.ExternalID,
				Reason:     "this profile belongs to another account; another identity's data is never overwritten",
			}
		case types.OutcomeClaimThenUpdate:
			if _, err := s.repos.User.GetOrCreate(ctx, tx, req.CallerID, req.CallerIsAnonymous); err != nil {
				return err
			}
			if err := s.ownership.TransferOwnership(ctx, tx, existing.ID, existing.UserID, req.CallerID); err != nil {
				return err
			}
			callerID := req.CallerID
			existing.UserID = &callerID
		case types.OutcomeAdditiveUpdate:
			// Normal same-owner path.
		}

		if err := s.repos.User.ApplyGeoHint(ctx, tx, req.CallerID, req.Geo); err != nil {
			return err
		}

		counts, err := s.mergeAdditive(ctx, tx, existing, metrics, extras)
		if err != nil {
			return err
		}
		run.MarkAsCompleted(counts.usageDays, counts.matches, counts.messages)

		profile = existing
		return s.recomputeMeta(ctx, tx, existing.ID)
	})

	s.finishRun(ctx, run, profile, err)
	if err != nil {
		return nil, err
	}

	log.Info("Updated profile",
		"platform", req.Platform,
		"externalID", req.ExternalID,
		"usageDays", run.UsageDaysWritten)
	return profile, nil
}

// MergeAccounts merges an older account's history into the caller's newer
// account. The caller's current profile (old external id) is retired: its
// history is re-parented onto the new profile, then the old row is removed.
// Merges must proceed strictly older to newer.
func (s *ProfileIngestionService) MergeAccounts(
	ctx context.Context,
	req types.MergeRequest,
) (*Profile, error) {
	log := s.log.Function("MergeAccounts")

	if req.OldExternalID == req.NewExternalID {
		return nil, &types.BadRequestError{
			Reason: "the new export belongs to the same account; use a regular re-upload instead of a merge",
		}
	}

	metrics, extras, err := s.fetchAndExtract(ctx, req.Platform, req.ExportURL)
	if err != nil {
		return nil, err
	}

	run := s.startRun(ctx, req.Platform)

	var profile *Profile
	err = s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		oldProfile, err := s.repos.Profile.GetByPlatformExternalID(ctx, tx, req.Platform, req.OldExternalID)
		if err != nil {
			return err
		}
		if oldProfile == nil {
			return &types.BadRequestError{
				Reason: "you have no existing profile to merge; upload your oldest account first",
			}
		}
		if oldProfile.UserID == nil || *oldProfile.UserID != req.CallerID {
			return types.ErrUnauthorized
		}

		if err := s.ownership.CheckChronology(oldProfile, metrics.LastActiveDay); err != nil {
			return err
		}
		if warning := s.ownership.CheckIdentityDrift(oldProfile, metrics.Demographics.BirthDate); warning != nil && !req.Confirmed {
			return warning
		}

		newProfile, err := s.repos.Profile.GetByPlatformExternalID(ctx, tx, req.Platform, req.NewExternalID)
		if err != nil {
			return err
		}

		var counts writeCounts
		if newProfile == nil {
			newProfile = buildProfile(req.Platform, req.NewExternalID, req.CallerID, metrics, extras)
			if err := s.repos.Profile.Create(ctx, tx, newProfile); err != nil {
				return err
			}
			counts, err = s.applyFresh(ctx, tx, newProfile, metrics)
		} else {
			if newProfile.UserID == nil || *newProfile.UserID != req.CallerID {
				return &types.ConflictError{
					ExternalID: req.NewExternalID,
					Reason:     "the new account's profile belongs to another identity",
				}
			}
			counts, err = s.mergeAdditive(ctx, tx, newProfile, metrics, extras)
		}
		if err != nil {
			return err
		}
		run.MarkAsCompleted(counts.usageDays, counts.matches, counts.messages)

		if err := s.retireProfile(ctx, tx, oldProfile, newProfile); err != nil {
			return err
		}

		// Re-parenting extended the timeline backwards; keep the earliest
		// first-active day.
		if oldProfile.FirstActiveDay != nil &&
			(newProfile.FirstActiveDay == nil || oldProfile.FirstActiveDay.Before(*newProfile.FirstActiveDay)) {
			newProfile.FirstActiveDay = oldProfile.FirstActiveDay
			if err := s.repos.Profile.Save(ctx, tx, newProfile); err != nil {
				return err
			}
		}

		profile = newProfile
		return s.recomputeMeta(ctx, tx, newProfile.ID)
	})

	s.finishRun(ctx, run, profile, err)
	if err != nil {
		return nil, err
	}

	log.Info("Merged accounts",
		"platform", req.Platform,
		"oldExternalID", req.OldExternalID,
		"newExternalID", req.NewExternalID)
	return profile, nil
}

// fetchAndExtract runs the pure front half of the pipeline: blob fetch,
// schema normalization, metric extraction.
func (s *ProfileIngestionService) fetchAndExtract(
	ctx context.Context,
	platform Platform,
	exportURL string,
) (*ExtractedMetrics, datatypes.JSON, error) {
	raw, err := s.blob.FetchJSON(ctx, exportURL)
	if err != nil {
		return nil, nil, err
	}

	export, err := s.normalizer.Normalize(platform, raw)
	if err != nil {
		return nil, nil, err
	}

	var extras datatypes.JSON
	if len(export.Extras) > 0 {
		if encoded, err := json.Marshal(export.Extras); err == nil {
			extras = encoded
		}
	}

	return s.extractor.Extract(export), extras, nil
}

type writeCounts struct {
	usageDays int
	matches   int
	messages  int
}

// applyFresh writes extracted metrics for a profile with no prior data.
func (s *ProfileIngestionService) applyFresh(
	ctx context.Context,
	tx *gorm.DB,
	profile *Profile,
	metrics *ExtractedMetrics,
) (writeCounts, error) {
	for _, record := range metrics.DailyUsage {
		record.ProfileID = profile.ID
	}
	if err := s.repos.DailyUsage.CreateBatch(ctx, tx, metrics.DailyUsage); err != nil {
		return writeCounts{}, err
	}

	messages := 0
	for _, match := range metrics.Matches {
		match.ProfileID = profile.ID
		messages += len(match.Messages)
	}
	if err := s.repos.Match.CreateBatch(ctx, tx, metrics.Matches); err != nil {
		return writeCounts{}, err
	}

	return writeCounts{
		usageDays: len(metrics.DailyUsage),
		matches:   len(metrics.Matches),
		messages:  messages,
	}, nil
}

// mergeAdditive applies extracted metrics on top of a profile's stored data.
// Running the same ingestion twice is a no-op on the second run; a superset
// export only adds or updates the new information.
func (s *ProfileIngestionService) mergeAdditive(
	ctx context.Context,
	tx *gorm.DB,
	profile *Profile,
	metrics *ExtractedMetrics,
	extras datatypes.JSON,
) (writeCounts, error) {
	existingUsage, err := s.repos.DailyUsage.GetExistingByProfile(ctx, tx, profile.ID)
	if err != nil {
		return writeCounts{}, err
	}

	toCreate, toUpdate := planUsageWrites(profile.ID, existingUsage, metrics.DailyUsage)
	if err := s.repos.DailyUsage.CreateBatch(ctx, tx, toCreate); err != nil {
		return writeCounts{}, err
	}
	if err := s.repos.DailyUsage.UpdateBatch(ctx, tx, toUpdate); err != nil {
		return writeCounts{}, err
	}

	existingMatches, err := s.repos.Match.GetExistingByProfile(ctx, tx, profile.ID)
	if err != nil {
		return writeCounts{}, err
	}

	newMatches, newMessages := planMatchWrites(profile.ID, existingMatches, metrics.Matches)
	if err := s.repos.Match.CreateBatch(ctx, tx, newMatches); err != nil {
		return writeCounts{}, err
	}
	if err := s.repos.Match.CreateMessages(ctx, tx, newMessages); err != nil {
		return writeCounts{}, err
	}

	refreshProfileSnapshot(profile, metrics, extras)
	if err := s.repos.Profile.Save(ctx, tx, profile); err != nil {
		return writeCounts{}, err
	}

	messages := len(newMessages)
	for _, match := range newMatches {
		messages += len(match.Messages)
	}

	return writeCounts{
		usageDays: len(toCreate) + len(toUpdate),
		matches:   len(newMatches),
		messages:  messages,
	}, nil
}

// retireProfile re-parents the old profile's history onto the new profile,
// then removes the old profile and its rollup. Rows colliding with data the
// new profile already holds stay behind and are deleted with it; the new
// profile's rows win.
func (s *ProfileIngestionService) retireProfile(
	ctx context.Context,
	tx *gorm.DB,
	oldProfile, newProfile *Profile,
) error {
	targetUsage, err := s.repos.DailyUsage.GetExistingByProfile(ctx, tx, newProfile.ID)
	if err != nil {
		return err
	}
	skipDates := make([]time.Time, 0, len(targetUsage))
	for _, record := range targetUsage {
		skipDates = append(skipDates, record.Date)
	}
	if _, err := s.repos.DailyUsage.Reparent(ctx, tx, oldProfile.ID, newProfile.ID, skipDates); err != nil {
		return err
	}

	targetMatches, err := s.repos.Match.GetExistingByProfile(ctx, tx, newProfile.ID)
	if err != nil {
		return err
	}
	skipMatchIDs := make([]string, 0, len(targetMatches))
	for platformMatchID := range targetMatches {
		skipMatchIDs = append(skipMatchIDs, platformMatchID)
	}
	if _, err := s.repos.Match.Reparent(ctx, tx, oldProfile.ID, newProfile.ID, skipMatchIDs); err != nil {
		return err
	}

	if err := s.repos.DailyUsage.DeleteByProfile(ctx, tx, oldProfile.ID); err != nil {
		return err
	}
	if err := s.repos.Match.DeleteByProfile(ctx, tx, oldProfile.ID); err != nil {
		return err
	}
	if err := s.repos.ProfileMeta.DeleteByProfile(ctx, tx, oldProfile.ID); err != nil {
		return err
	}
	return s.repos.Profile.Delete(ctx, tx, oldProfile.ID)
}

// recomputeMeta regenerates the profile's rollup from its now-current usage
// and match state. Never patched; always rebuilt in full.
func (s *ProfileIngestionService) recomputeMeta(
	ctx context.Context,
	tx *gorm.DB,
	profileID uuid.UUID,
) error {
	usage, err := s.repos.DailyUsage.GetAllByProfile(ctx, tx, profileID)
	if err != nil {
		return err
	}
	matches, err := s.repos.Match.GetAllByProfile(ctx, tx, profileID)
	if err != nil {
		return err
	}

	meta := ComputeProfileMeta(profileID, usage, matches)
	return s.repos.ProfileMeta.Replace(ctx, tx, meta)
}

func (s *ProfileIngestionService) startRun(ctx context.Context, platform Platform) *IngestionRun {
	run := &IngestionRun{
		Platform: platform,
		Status:   IngestionStatusRunning,
	}
	if err := s.repos.IngestionRun.Create(ctx, s.db.SQLWithContext(ctx), run); err != nil {
		s.log.Warn("failed to create ingestion run", "platform", platform, "error", err)
	}
	return run
}

// finishRun records the upload outcome outside the ingestion transaction so
// a failed run is still auditable.
func (s *ProfileIngestionService) finishRun(
	ctx context.Context,
	run *IngestionRun,
	profile *Profile,
	err error,
) {
	if err != nil {
		run.MarkAsFailed(err)
	}
	if profile != nil {
		profileID := profile.ID
		run.ProfileID = &profileID
	}
	if saveErr := s.repos.IngestionRun.Save(ctx, s.db.SQLWithContext(ctx), run); saveErr != nil {
		s.log.Warn("failed to save ingestion run", "runID", run.ID, "error", saveErr)
	}
}

// planUsageWrites splits incoming usage rows into creates and overwrites.
// A date the profile already holds is overwritten only when its counts
// changed; counts are never summed across exports, so re-ingesting the same
// export is a no-op and the latest export owns each date.
func planUsageWrites(
	profileID uuid.UUID,
	existing map[string]*DailyUsageRecord,
	incoming []*DailyUsageRecord,
) (toCreate, toUpdate []*DailyUsageRecord) {
	for _, record := range incoming {
		current, ok := existing[utils.FormatDay(record.Date)]
		if !ok {
			record.ProfileID = profileID
			toCreate = append(toCreate, record)
			continue
		}
		if current.CountsEqual(record) {
			continue
		}
		current.CopyCountsFrom(record)
		toUpdate = append(toUpdate, current)
	}
	return toCreate, toUpdate
}

// planMatchWrites splits incoming matches into new matches and messages to
// union onto already-seen matches. Matches dedupe on the platform match id;
// message sets only ever grow, keyed by the per-message dedup key.
func planMatchWrites(
	profileID uuid.UUID,
	existing map[string]*Match,
	incoming []*Match,
) (newMatches []*Match, newMessages []*Message) {
	for _, match := range incoming {
		current, ok := existing[match.PlatformMatchID]
		if !ok {
			match.ProfileID = profileID
			newMatches = append(newMatches, match)
			continue
		}

		seen := make(map[string]bool, len(current.Messages))
		for _, msg := range current.Messages {
			seen[msg.DedupKey] = true
		}

		for i := range match.Messages {
			if seen[match.Messages[i].DedupKey] {
				continue
			}
			msg := match.Messages[i]
			msg.MatchID = current.ID
			newMessages = append(newMessages, &msg)
		}
	}
	return newMatches, newMessages
}

// buildProfile assembles a profile row from one export's demographics.
func buildProfile(
	platform Platform,
	externalID string,
	ownerID uuid.UUID,
	metrics *ExtractedMetrics,
	extras datatypes.JSON,
) *Profile {
	profile := &Profile{
		Platform:   platform,
		ExternalID: externalID,
		UserID:     &ownerID,
	}
	refreshProfileSnapshot(profile, metrics, extras)
	return profile
}

// refreshProfileSnapshot overwrites the demographic snapshot with the newest
// export's values and widens the active-day bounds.
func refreshProfileSnapshot(profile *Profile, metrics *ExtractedMetrics, extras datatypes.JSON) {
	demographics := metrics.Demographics

	birthDate := demographics.BirthDate
	profile.BirthDate = &birthDate
	profile.Gender = demographics.Gender
	profile.GenderFilter = demographics.GenderFilter
	profile.InterestedIn = demographics.InterestedIn
	profile.AgeFilterMin = demographics.AgeFilterMin
	profile.AgeFilterMax = demographics.AgeFilterMax
	profile.Bio = demographics.Bio
	profile.Education = demographics.Education
	profile.City = demographics.City
	profile.Country = demographics.Country
	profile.Region = demographics.Region
	profile.PositionLat = demographics.PositionLat
	profile.PositionLon = demographics.PositionLon

	if len(demographics.Interests) > 0 {
		if encoded, err := json.Marshal(demographics.Interests); err == nil {
			profile.Interests = encoded
		}
	}
	if len(extras) > 0 {
		profile.Extras = extras
	}

	if metrics.FirstActiveDay != nil &&
		(profile.FirstActiveDay == nil || metrics.FirstActiveDay.Before(*profile.FirstActiveDay)) {
		profile.FirstActiveDay = metrics.FirstActiveDay
	}
	if metrics.LastActiveDay != nil &&
		(profile.LastActiveDay == nil || metrics.LastActiveDay.After(*profile.LastActiveDay)) {
		profile.LastActiveDay = metrics.LastActiveDay
	}
}

// ComputeProfileMeta rolls usage and match data into the denormalized meta
// row. Shared by ingestion and the cohort aggregator so synthetic rollups use
// the same formulas as real ones.
func ComputeProfileMeta(
	profileID uuid.UUID,
	usage []*DailyUsageRecord,
	matches []*Match,
) *ProfileMeta {
	meta := &ProfileMeta{
		ProfileID:  profileID,
		ActiveDays: len(usage),
	}

	for _, record := range usage {
		meta.TotalAppOpens += record.AppOpens
		meta.TotalSwipeLikes += record.SwipeLikes
		meta.TotalSwipePasses += record.SwipePasses
		meta.TotalSuperLikes += record.SuperLikes
		meta.TotalMatches += record.Matches
		meta.TotalMessagesSent += record.MessagesSent
		meta.TotalMessagesReceived += record.MessagesReceived

		date := record.Date
		if meta.FirstActiveDay == nil || date.Before(*meta.FirstActiveDay) {
			d := date
			meta.FirstActiveDay = &d
		}
		if meta.LastActiveDay == nil || date.After(*meta.LastActiveDay) {
			d := date
			meta.LastActiveDay = &d
		}
	}

	meta.LikeRate = rateOrZero(meta.TotalSwipeLikes, meta.TotalSwipeLikes+meta.TotalSwipePasses)
	meta.MatchRate = rateOrZero(meta.TotalMatches, meta.TotalSwipeLikes)
	meta.ResponseRate = rateOrZero(meta.TotalMessagesReceived, meta.TotalMessagesSent)
	meta.EngagementRate = rateOrZero(
		meta.TotalMessagesSent+meta.TotalMessagesReceived,
		meta.TotalAppOpens,
	)
	meta.SwipesPerDay = rateOrZero(meta.TotalSwipeLikes+meta.TotalSwipePasses, meta.ActiveDays)

	totalMessages := 0
	for _, match := range matches {
		if len(match.Messages) > 0 {
			meta.Conversations++
			totalMessages += len(match.Messages)
		}
	}
	meta.ConversationRate = rateOrZero(meta.Conversations, len(matches))
	meta.MessagesPerConversation = rateOrZero(totalMessages, meta.Conversations)

	return meta
}

func rateOrZero(numerator, denominator int) float64 {
	if rate := utils.Rate(numerator, denominator); rate != nil {
		return *rate
	}
	return 0
}
