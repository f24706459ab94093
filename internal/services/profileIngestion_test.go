package services

import (
	"testing"
	"time"

	. "swipestats/internal/models"
	"swipestats/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usageRow(t *testing.T, day string, appOpens, likes, passes int) *DailyUsageRecord {
	t.Helper()
	date, err := utils.ParseDay(day)
	require.NoError(t, err)
	record := &DailyUsageRecord{
		Date:        date,
		AppOpens:    appOpens,
		SwipeLikes:  likes,
		SwipePasses: passes,
	}
	deriveDailyRates(record)
	return record
}

func usageByDay(records ...*DailyUsageRecord) map[string]*DailyUsageRecord {
	byDay := make(map[string]*DailyUsageRecord, len(records))
	for _, record := range records {
		byDay[utils.FormatDay(record.Date)] = record
	}
	return byDay
}

func TestPlanUsageWrites(t *testing.T) {
	profileID := uuid.New()

	t.Run("All new dates create", func(t *testing.T) {
		incoming := []*DailyUsageRecord{
			usageRow(t, "2024-01-01", 2, 10, 5),
			usageRow(t, "2024-01-02", 3, 8, 4),
		}

		toCreate, toUpdate := planUsageWrites(profileID, map[string]*DailyUsageRecord{}, incoming)
		assert.Len(t, toCreate, 2)
		assert.Empty(t, toUpdate)
		assert.Equal(t, profileID, toCreate[0].ProfileID)
	})

	t.Run("Identical re-ingest is a no-op", func(t *testing.T) {
		existing := usageByDay(usageRow(t, "2024-01-01", 2, 10, 5))
		incoming := []*DailyUsageRecord{usageRow(t, "2024-01-01", 2, 10, 5)}

		toCreate, toUpdate := planUsageWrites(profileID, existing, incoming)
		assert.Empty(t, toCreate)
		assert.Empty(t, toUpdate)
	})

	t.Run("Changed counts overwrite, never sum", func(t *testing.T) {
		stored := usageRow(t, "2024-01-01", 2, 10, 5)
		incoming := []*DailyUsageRecord{usageRow(t, "2024-01-01", 4, 20, 5)}

		toCreate, toUpdate := planUsageWrites(profileID, usageByDay(stored), incoming)
		assert.Empty(t, toCreate)
		require.Len(t, toUpdate, 1)

		assert.Equal(t, 4, toUpdate[0].AppOpens)
		assert.Equal(t, 20, toUpdate[0].SwipeLikes)
		require.NotNil(t, toUpdate[0].LikeRate)
		assert.InDelta(t, 0.8, *toUpdate[0].LikeRate, 0.0001)
	})

	t.Run("Superset export adds only the missing dates", func(t *testing.T) {
		// First export covered five days; the later export covers those five
		// plus five more with identical counts for the overlap.
		var firstBatch []*DailyUsageRecord
		for day := 1; day <= 5; day++ {
			firstBatch = append(firstBatch, usageRow(t, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format(utils.DayFormat), day, day*2, day))
		}
		var secondBatch []*DailyUsageRecord
		for day := 1; day <= 10; day++ {
			secondBatch = append(secondBatch, usageRow(t, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format(utils.DayFormat), day, day*2, day))
		}

		toCreate, toUpdate := planUsageWrites(profileID, usageByDay(firstBatch...), secondBatch)
		assert.Len(t, toCreate, 5)
		assert.Empty(t, toUpdate)
	})
}

func TestPlanMatchWrites(t *testing.T) {
	profileID := uuid.New()
	sentAt := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	message := func(content string, at time.Time) Message {
		hash := utils.ContentHash(content)
		return Message{
			DedupKey:    utils.MessageDedupKey(at, string(DirectionSent), hash),
			Direction:   DirectionSent,
			Type:        MessageTypeText,
			SentAt:      at,
			ContentHash: hash,
			CharCount:   len(content),
		}
	}

	t.Run("Unseen matches create whole", func(t *testing.T) {
		incoming := []*Match{
			{PlatformMatchID: "m1", Messages: []Message{message("hey", sentAt)}},
		}

		newMatches, newMessages := planMatchWrites(profileID, map[string]*Match{}, incoming)
		require.Len(t, newMatches, 1)
		assert.Empty(t, newMessages)
		assert.Equal(t, profileID, newMatches[0].ProfileID)
	})

	t.Run("Known match gains only unseen messages", func(t *testing.T) {
		storedID := uuid.New()
		stored := &Match{
			BaseUUIDModel:   BaseUUIDModel{ID: storedID},
			ProfileID:       profileID,
			PlatformMatchID: "m1",
			Messages:        []Message{message("hey", sentAt)},
		}
		incoming := []*Match{
			{
				PlatformMatchID: "m1",
				Messages: []Message{
					message("hey", sentAt),
					message("how was your weekend", sentAt.Add(time.Hour)),
				},
			},
		}

		newMatches, newMessages := planMatchWrites(profileID, map[string]*Match{"m1": stored}, incoming)
		assert.Empty(t, newMatches)
		require.Len(t, newMessages, 1)
		assert.Equal(t, storedID, newMessages[0].MatchID)
		assert.Equal(t, utils.ContentHash("how was your weekend"), newMessages[0].ContentHash)
	})

	t.Run("Identical re-ingest writes nothing", func(t *testing.T) {
		stored := &Match{
			BaseUUIDModel:   BaseUUIDModel{ID: uuid.New()},
			PlatformMatchID: "m1",
			Messages:        []Message{message("hey", sentAt)},
		}
		incoming := []*Match{
			{PlatformMatchID: "m1", Messages: []Message{message("hey", sentAt)}},
		}

		newMatches, newMessages := planMatchWrites(profileID, map[string]*Match{"m1": stored}, incoming)
		assert.Empty(t, newMatches)
		assert.Empty(t, newMessages)
	})

	t.Run("Superset export grows the match set monotonically", func(t *testing.T) {
		existing := map[string]*Match{}
		for _, id := range []string{"m1", "m2"} {
			existing[id] = &Match{
				BaseUUIDModel:   BaseUUIDModel{ID: uuid.New()},
				PlatformMatchID: id,
			}
		}
		incoming := []*Match{
			{PlatformMatchID: "m1"},
			{PlatformMatchID: "m2"},
			{PlatformMatchID: "m3"},
			{PlatformMatchID: "m4"},
		}

		newMatches, newMessages := planMatchWrites(profileID, existing, incoming)
		require.Len(t, newMatches, 2)
		assert.Empty(t, newMessages)
		assert.Equal(t, "m3", newMatches[0].PlatformMatchID)
		assert.Equal(t, "m4", newMatches[1].PlatformMatchID)
	})
}

func TestComputeProfileMeta(t *testing.T) {
	profileID := uuid.New()

	t.Run("Totals and rates from usage", func(t *testing.T) {
		usage := []*DailyUsageRecord{
			usageRow(t, "2024-01-01", 5, 30, 70),
			usageRow(t, "2024-01-03", 5, 10, 90),
		}
		usage[0].Matches = 3
		usage[0].MessagesSent = 6
		usage[0].MessagesReceived = 3

		meta := ComputeProfileMeta(profileID, usage, nil)

		assert.Equal(t, profileID, meta.ProfileID)
		assert.Equal(t, 2, meta.ActiveDays)
		assert.Equal(t, 10, meta.TotalAppOpens)
		assert.Equal(t, 40, meta.TotalSwipeLikes)
		assert.Equal(t, 160, meta.TotalSwipePasses)
		assert.InDelta(t, 0.2, meta.LikeRate, 0.0001)
		assert.InDelta(t, 0.075, meta.MatchRate, 0.0001)
		assert.InDelta(t, 0.5, meta.ResponseRate, 0.0001)
		assert.InDelta(t, 0.9, meta.EngagementRate, 0.0001)
		assert.InDelta(t, 100, meta.SwipesPerDay, 0.0001)

		require.NotNil(t, meta.FirstActiveDay)
		require.NotNil(t, meta.LastActiveDay)
		assert.Equal(t, "2024-01-01", utils.FormatDay(*meta.FirstActiveDay))
		assert.Equal(t, "2024-01-03", utils.FormatDay(*meta.LastActiveDay))
	})

	t.Run("Conversations count matches with at least one message", func(t *testing.T) {
		matches := []*Match{
			{PlatformMatchID: "m1", Messages: []Message{{DedupKey: "a"}, {DedupKey: "b"}}},
			{PlatformMatchID: "m2", Messages: []Message{{DedupKey: "c"}}},
			{PlatformMatchID: "m3"},
			{PlatformMatchID: "m4"},
		}

		meta := ComputeProfileMeta(profileID, nil, matches)

		assert.Equal(t, 2, meta.Conversations)
		assert.InDelta(t, 0.5, meta.ConversationRate, 0.0001)
		assert.InDelta(t, 1.5, meta.MessagesPerConversation, 0.0001)
	})

	t.Run("Empty profile yields zero rates, not panics", func(t *testing.T) {
		meta := ComputeProfileMeta(profileID, nil, nil)

		assert.Equal(t, 0, meta.ActiveDays)
		assert.Zero(t, meta.LikeRate)
		assert.Zero(t, meta.ConversationRate)
		assert.Nil(t, meta.FirstActiveDay)
	})
}

func TestRefreshProfileSnapshot(t *testing.T) {
	day := func(value string) *time.Time {
		parsed, err := utils.ParseDay(value)
		require.NoError(t, err)
		return &parsed
	}

	t.Run("Active day bounds only widen", func(t *testing.T) {
		profile := &Profile{
			FirstActiveDay: day("2024-02-01"),
			LastActiveDay:  day("2024-03-01"),
		}
		metrics := &ExtractedMetrics{
			FirstActiveDay: day("2024-01-01"),
			LastActiveDay:  day("2024-02-15"),
		}

		refreshProfileSnapshot(profile, metrics, nil)

		assert.Equal(t, "2024-01-01", utils.FormatDay(*profile.FirstActiveDay))
		assert.Equal(t, "2024-03-01", utils.FormatDay(*profile.LastActiveDay))
	})

	t.Run("Latest export owns the demographic snapshot", func(t *testing.T) {
		profile := &Profile{Bio: "old bio", City: "Oslo"}
		metrics := &ExtractedMetrics{}
		metrics.Demographics.Bio = "new bio"
		metrics.Demographics.City = "Bergen"
		metrics.Demographics.Gender = "M"

		refreshProfileSnapshot(profile, metrics, nil)

		assert.Equal(t, "new bio", profile.Bio)
		assert.Equal(t, "Bergen", profile.City)
		assert.Equal(t, "M", profile.Gender)
	})
}
